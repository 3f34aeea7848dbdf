package columnar

import (
	"math/bits"
)

// Bitmask is a packed per-row validity bitmap: bit=1 means the row is valid
// (non-null). A nil *Bitmask means every row is valid. Bits are stored
// little-endian within 64-bit words, so the mask for row i lives at
// words[i/64] bit (i%64), matching the layout sliced views address with a
// bit offset.
type Bitmask struct {
	words []uint64
	bits  int
}

// NewBitmask allocates a mask covering n rows. When prefill is true every
// row starts valid, otherwise every row starts invalid.
func NewBitmask(n int, prefill bool) *Bitmask {
	words := make([]uint64, (n+63)/64)
	if prefill {
		for i := range words {
			words[i] = ^uint64(0)
		}
	}
	return &Bitmask{words: words, bits: n}
}

// Len returns the number of addressable rows
func (m *Bitmask) Len() int {
	if m == nil {
		return 0
	}
	return m.bits
}

// Valid returns whether row i is valid. A nil mask is all-valid.
func (m *Bitmask) Valid(i int) bool {
	if m == nil {
		return true
	}
	return m.words[i>>6]&(1<<(uint(i)&63)) != 0
}

// SetValid marks row i as valid
func (m *Bitmask) SetValid(i int) {
	m.words[i>>6] |= 1 << (uint(i) & 63)
}

// SetInvalid marks row i as invalid (null)
func (m *Bitmask) SetInvalid(i int) {
	m.words[i>>6] &^= 1 << (uint(i) & 63)
}

// CountInvalid counts the invalid rows in the range [off, off+n)
func (m *Bitmask) CountInvalid(off, n int) int {
	if m == nil {
		return 0
	}
	invalid := 0
	for done := 0; done < n; done += 64 {
		w := ^m.wordAt(off + done)
		if n-done < 64 {
			w &= (1 << uint(n-done)) - 1
		}
		invalid += bits.OnesCount64(w)
	}
	return invalid
}

// HasInvalid returns whether any row in [off, off+n) is invalid
func (m *Bitmask) HasInvalid(off, n int) bool {
	return m.CountInvalid(off, n) > 0
}

// wordAt returns the 64-bit window of the mask starting at bit offset off.
// Bits past the end of the mask read as valid, so word-granular reads on the
// last partial word behave like the absent-mask identity.
func (m *Bitmask) wordAt(off int) uint64 {
	if m == nil {
		return ^uint64(0)
	}
	idx := off >> 6
	shift := uint(off) & 63
	var w uint64
	if idx < len(m.words) {
		w = m.words[idx] >> shift
		if shift != 0 && idx+1 < len(m.words) {
			w |= m.words[idx+1] << (64 - shift)
		}
	}
	if rem := m.bits - off; rem < 64 {
		if rem < 0 {
			rem = 0
		}
		w |= ^uint64(0) << uint(rem)
	}
	return w
}

// andWordAt ANDs a 64-bit window into the mask at bit offset off, leaving
// mask bits outside the window untouched
func (m *Bitmask) andWordAt(off int, w uint64) {
	idx := off >> 6
	shift := uint(off) & 63
	m.words[idx] &= (w << shift) | ((1 << shift) - 1)
	if shift != 0 && idx+1 < len(m.words) {
		m.words[idx+1] &= (w >> (64 - shift)) | (^uint64(0) << shift)
	}
}

// AndMasks produces a new owned mask of n rows where row i is valid iff
// both inputs are valid at their respective offset+i. A nil input mask is
// the identity (all rows valid). Exactly one buffer is allocated and
// neither input is mutated.
func AndMasks(a *Bitmask, offA int, b *Bitmask, offB int, n int) *Bitmask {
	out := NewBitmask(n, false)
	for i := range out.words {
		out.words[i] = a.wordAt(offA+i*64) & b.wordAt(offB+i*64)
	}
	return out
}

// andMasksAt is AndMasks written into a wider destination: the combined
// validity of n rows lands at bit offset dstOff, with all lower bits left
// valid. Superimposition uses this so a derived child view can keep its
// original row offset while referencing the new mask.
func andMasksAt(a *Bitmask, offA int, b *Bitmask, offB int, dstOff, n int) *Bitmask {
	out := NewBitmask(dstOff+n, true)
	for done := 0; done < n; done += 64 {
		w := a.wordAt(offA+done) & b.wordAt(offB+done)
		if n-done < 64 {
			w |= ^uint64(0) << uint(n-done)
		}
		out.andWordAt(dstOff+done, w)
	}
	return out
}
