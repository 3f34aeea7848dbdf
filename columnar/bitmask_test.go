package columnar

import (
	"testing"
)

func maskFromPattern(pattern string) *Bitmask {
	// pattern[i] is row i: '1' valid, '0' invalid
	mask := NewBitmask(len(pattern), false)
	for i, c := range pattern {
		if c == '1' {
			mask.SetValid(i)
		}
	}
	return mask
}

func expectMaskRange(t *testing.T, mask *Bitmask, off int, want string) {
	t.Helper()
	for i := range want {
		valid := mask.Valid(off + i)
		if valid != (want[i] == '1') {
			t.Errorf("Row %d: expected valid=%v, got %v", i, want[i] == '1', valid)
		}
	}
}

func TestBitmaskBasics(t *testing.T) {
	t.Run("PrefillValid", func(t *testing.T) {
		mask := NewBitmask(100, true)
		if mask.CountInvalid(0, 100) != 0 {
			t.Errorf("Expected no invalid rows, got %d", mask.CountInvalid(0, 100))
		}
	})

	t.Run("PrefillInvalid", func(t *testing.T) {
		mask := NewBitmask(100, false)
		if got := mask.CountInvalid(0, 100); got != 100 {
			t.Errorf("Expected 100 invalid rows, got %d", got)
		}
	})

	t.Run("SetAndCount", func(t *testing.T) {
		mask := NewBitmask(200, true)
		for _, row := range []int{0, 63, 64, 127, 199} {
			mask.SetInvalid(row)
		}
		if got := mask.CountInvalid(0, 200); got != 5 {
			t.Errorf("Expected 5 invalid rows, got %d", got)
		}
		if got := mask.CountInvalid(64, 64); got != 2 {
			t.Errorf("Expected 2 invalid rows in [64,128), got %d", got)
		}
		mask.SetValid(63)
		if mask.Valid(63) != true {
			t.Error("Row 63 should be valid again")
		}
	})

	t.Run("NilMaskIsAllValid", func(t *testing.T) {
		var mask *Bitmask
		if !mask.Valid(12345) {
			t.Error("Nil mask should report every row valid")
		}
		if mask.CountInvalid(0, 1000) != 0 {
			t.Error("Nil mask should count no invalid rows")
		}
	})
}

func TestAndMasks(t *testing.T) {
	t.Run("AlignedPatterns", func(t *testing.T) {
		a := maskFromPattern("1111101")
		b := maskFromPattern("0110111")
		out := AndMasks(a, 0, b, 0, 7)
		expectMaskRange(t, out, 0, "0110101")
	})

	t.Run("IndependentOffsets", func(t *testing.T) {
		// The struct/member patterns from the sliced scenario, restricted
		// to rows [1, 6) of each input
		a := maskFromPattern("1111101")
		b := maskFromPattern("0110111")
		out := AndMasks(a, 1, b, 1, 5)
		expectMaskRange(t, out, 0, "11010")
	})

	t.Run("MisalignedOffsets", func(t *testing.T) {
		a := maskFromPattern("001111")
		b := maskFromPattern("1111100")
		out := AndMasks(a, 2, b, 3, 4)
		// a[2..6) = 1111, b[3..7) = 1100
		expectMaskRange(t, out, 0, "1100")
	})

	t.Run("MissingMaskIsIdentity", func(t *testing.T) {
		a := maskFromPattern("0101")
		out := AndMasks(a, 0, nil, 0, 4)
		expectMaskRange(t, out, 0, "0101")

		out = AndMasks(nil, 0, nil, 5, 4)
		expectMaskRange(t, out, 0, "1111")
	})

	t.Run("InputsNotMutated", func(t *testing.T) {
		a := maskFromPattern("1010")
		b := maskFromPattern("1100")
		_ = AndMasks(a, 0, b, 0, 4)
		expectMaskRange(t, a, 0, "1010")
		expectMaskRange(t, b, 0, "1100")
	})

	t.Run("CrossesWordBoundary", func(t *testing.T) {
		a := NewBitmask(130, true)
		b := NewBitmask(130, true)
		a.SetInvalid(70)
		b.SetInvalid(100)
		out := AndMasks(a, 10, b, 10, 120)
		if got := out.CountInvalid(0, 120); got != 2 {
			t.Errorf("Expected 2 invalid rows, got %d", got)
		}
		if out.Valid(60) {
			t.Error("Row 60 (bit 70 of a) should be invalid")
		}
		if out.Valid(90) {
			t.Error("Row 90 (bit 100 of b) should be invalid")
		}
	})
}

func TestAndMasksAt(t *testing.T) {
	// The padded form places the combined range at a destination offset and
	// leaves the low bits valid, so a derived view keeps its row offset
	a := maskFromPattern("1111101")
	b := maskFromPattern("0110111")
	out := andMasksAt(a, 1, b, 1, 1, 5)
	if out.Len() != 6 {
		t.Fatalf("Expected 6 addressable bits, got %d", out.Len())
	}
	if !out.Valid(0) {
		t.Error("Padding bit 0 should read valid")
	}
	expectMaskRange(t, out, 1, "11010")
}
