package molecule

import (
	"fmt"
	"math/bits"
	"strings"
)

// MACCSNumBits is the length of a MACCS fingerprint.  Bit 0 is never set;
// bits 1..166 correspond to the public MACCS keys.
const MACCSNumBits = 167

// Fingerprint is a 167-bit structural descriptor.  It is a value type:
// copies are independent and the zero value is the empty fingerprint.
type Fingerprint [3]uint64

// FingerprintFromBits builds a fingerprint with the given bit indices set.
// Indices outside [0, MACCSNumBits) are rejected.
func FingerprintFromBits(on ...int) (Fingerprint, error) {
	var fp Fingerprint
	for _, i := range on {
		if i < 0 || i >= MACCSNumBits {
			return Fingerprint{}, fmt.Errorf("fingerprint: bit %d out of range [0, %d)", i, MACCSNumBits)
		}
		fp = fp.with(i)
	}
	return fp, nil
}

// ParseFingerprint reads the MACCSNumBits-character '0'/'1' representation
// produced by String, bit 0 first.
func ParseFingerprint(s string) (Fingerprint, error) {
	s = strings.TrimSpace(s)
	if len(s) != MACCSNumBits {
		return Fingerprint{}, fmt.Errorf("fingerprint: expected %d characters, got %d", MACCSNumBits, len(s))
	}
	var fp Fingerprint
	for i := 0; i < MACCSNumBits; i++ {
		switch s[i] {
		case '1':
			fp = fp.with(i)
		case '0':
		default:
			return Fingerprint{}, fmt.Errorf("fingerprint: invalid character %q at %d", s[i], i)
		}
	}
	return fp, nil
}

func (f Fingerprint) with(i int) Fingerprint {
	f[i>>6] |= 1 << uint(i&63)
	return f
}

// Bit reports whether bit i is set.
func (f Fingerprint) Bit(i int) bool {
	if i < 0 || i >= MACCSNumBits {
		return false
	}
	return f[i>>6]&(1<<uint(i&63)) != 0
}

// Count returns the number of set bits.
func (f Fingerprint) Count() int {
	return bits.OnesCount64(f[0]) + bits.OnesCount64(f[1]) + bits.OnesCount64(f[2])
}

// OnBits returns the indices of the set bits in ascending order.
func (f Fingerprint) OnBits() []int {
	out := make([]int, 0, f.Count())
	for i := 0; i < MACCSNumBits; i++ {
		if f.Bit(i) {
			out = append(out, i)
		}
	}
	return out
}

// String renders the fingerprint as MACCSNumBits '0'/'1' characters.
func (f Fingerprint) String() string {
	b := make([]byte, MACCSNumBits)
	for i := range b {
		if f.Bit(i) {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Floats returns the fingerprint as a 0/1 vector, one entry per bit.
func (f Fingerprint) Floats() []float64 {
	out := make([]float64, MACCSNumBits)
	for i := range out {
		if f.Bit(i) {
			out[i] = 1
		}
	}
	return out
}

//Personal.AI order the ending
