package columnar

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomLeaf builds a leaf column of rows rows with random values and a
// random (possibly absent) validity mask
func randomLeaf(rng *rand.Rand, rows int) *Column {
	var mask *Bitmask
	if rng.Intn(2) == 0 {
		mask = NewBitmask(rows, true)
		for i := 0; i < rows; i++ {
			if rng.Intn(4) == 0 {
				mask.SetInvalid(i)
			}
		}
	}
	if rng.Intn(2) == 0 {
		vals := make([]int64, rows)
		for i := range vals {
			vals[i] = rng.Int63n(1000)
		}
		return NewColumn(DataTypeInt64, rows, vals, mask)
	}
	vals := make([]string, rows)
	letters := []string{"a", "bb", "ccc", "", "dddd"}
	for i := range vals {
		vals[i] = letters[rng.Intn(len(letters))]
	}
	return NewColumn(DataTypeString, rows, vals, mask)
}

// randomColumn builds a leaf or struct column tree of bounded depth
func randomColumn(rng *rand.Rand, rows, depth int) *Column {
	if depth == 0 || rng.Intn(3) > 0 {
		return randomLeaf(rng, rows)
	}
	memberCount := 1 + rng.Intn(3)
	members := make([]*Column, memberCount)
	for i := range members {
		members[i] = randomColumn(rng, rows, depth-1)
	}
	var mask *Bitmask
	if rng.Intn(2) == 0 {
		mask = NewBitmask(rows, true)
		for i := 0; i < rows; i++ {
			if rng.Intn(5) == 0 {
				mask.SetInvalid(i)
			}
		}
	}
	return NewStructColumn(rows, mask, members...)
}

func randomTable(seed int64, rows int) (Table, []*Column) {
	rng := rand.New(rand.NewSource(seed))
	columnCount := 1 + rng.Intn(4)
	owned := make([]*Column, columnCount)
	table := make(Table, columnCount)
	for i := range table {
		owned[i] = randomColumn(rng, rows, 3)
		table[i] = owned[i].View()
	}
	return table, owned
}

func tablesEquivalent(a, b Table) bool {
	if a.NumColumns() != b.NumColumns() {
		return false
	}
	for i := range a {
		if !viewsEquivalent(a[i], b[i]) {
			return false
		}
	}
	return true
}

func viewsEquivalent(a, b ColumnView) bool {
	if a.DataType != b.DataType || a.Size != b.Size {
		return false
	}
	for i := 0; i < a.Size; i++ {
		av, aok := a.Value(i)
		bv, bok := b.Value(i)
		if aok != bok {
			return false
		}
		if aok && !valuesEqual(av, bv) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	as, aIsSlice := a.([]interface{})
	bs, bIsSlice := b.([]interface{})
	if aIsSlice != bIsSlice {
		return false
	}
	if !aIsSlice {
		return a == b
	}
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !valuesEqual(as[i], bs[i]) {
			return false
		}
	}
	return true
}

func TestPropertyFlattenRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("flatten/unflatten round-trips arbitrary struct nesting", prop.ForAll(
		func(seed int64, rows int) bool {
			table, owned := randomTable(seed, rows)

			flattened, err := FlattenNestedColumns(table, nil, nil, NullabilityForce)
			if err != nil {
				return false
			}
			unflattened, err := UnflattenNestedColumns(flattened.Table, table)
			if err != nil {
				return false
			}
			equivalent := tablesEquivalent(unflattened, table)

			// owned columns must stay alive for the duration of the views
			_ = owned
			return equivalent
		},
		gen.Int64(),
		gen.IntRange(1, 150),
	))

	properties.Property("superimpose is idempotent", prop.ForAll(
		func(seed int64, rows int) bool {
			rng := rand.New(rand.NewSource(seed))
			col := randomColumn(rng, rows, 3)

			once, buffers, err := SuperimposeParentNulls(col.View())
			if err != nil {
				return false
			}
			twice, _, err := SuperimposeParentNulls(once)
			if err != nil {
				return false
			}
			_ = buffers
			return viewsEquivalent(twice, once)
		},
		gen.Int64(),
		gen.IntRange(1, 150),
	))

	properties.Property("sliced flatten equals flattened slice", prop.ForAll(
		func(seed int64, rows int) bool {
			rng := rand.New(rand.NewSource(seed))
			col := randomColumn(rng, rows, 2)
			if rows < 3 {
				return true
			}
			begin := 1 + rng.Intn(rows-2)
			end := begin + 1 + rng.Intn(rows-begin-1)

			sliced := col.View().Slice(begin, end)
			fromSliced, err := FlattenNestedColumns(Table{sliced}, nil, nil, NullabilityForce)
			if err != nil {
				return false
			}

			whole, err := FlattenNestedColumns(Table{col.View()}, nil, nil, NullabilityForce)
			if err != nil {
				return false
			}
			for i := range whole.Table {
				if !viewsEquivalent(fromSliced.Table[i], whole.Table[i].Slice(begin, end)) {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(3, 150),
	))

	properties.TestingRun(t)
}
