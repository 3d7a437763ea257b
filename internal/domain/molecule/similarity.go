package molecule

import "math/bits"

// Tanimoto returns |a ∧ b| / |a ∨ b|.  Two empty fingerprints have
// similarity 0.
func Tanimoto(a, b Fingerprint) float64 {
	var inter, union int
	for i := range a {
		inter += bits.OnesCount64(a[i] & b[i])
		union += bits.OnesCount64(a[i] | b[i])
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// BulkTanimoto returns the similarity of query to each reference, in order.
func BulkTanimoto(query Fingerprint, refs []Fingerprint) []float64 {
	out := make([]float64, len(refs))
	for i, r := range refs {
		out[i] = Tanimoto(query, r)
	}
	return out
}

// MaxTanimoto returns the highest similarity of query to any reference, or
// 0 when refs is empty.
func MaxTanimoto(query Fingerprint, refs []Fingerprint) float64 {
	best := 0.0
	for _, r := range refs {
		if s := Tanimoto(query, r); s > best {
			best = s
		}
	}
	return best
}

//Personal.AI order the ending
