package molecule

// implicitH stands for the folded hydrogen in a neighbour ordering.
const implicitH = -1

// stereoRef is the neighbour order a stored Chirality refers to: the folded
// hydrogen first when there is one, then neighbours in adjacency order.
func (m *Molecule) stereoRef(i int) []int {
	ref := make([]int, 0, len(m.adj[i])+1)
	if m.atoms[i].Hydrogens == 1 {
		ref = append(ref, implicitH)
	}
	for _, e := range m.adj[i] {
		ref = append(ref, e.atom)
	}
	return ref
}

// canHoldChirality reports whether atom i has a tetrahedral neighbourhood:
// three or four distinct ligands counting at most one folded hydrogen.
func (m *Molecule) canHoldChirality(i int) bool {
	h := m.atoms[i].Hydrogens
	if h > 1 {
		return false
	}
	n := len(m.adj[i]) + h
	return n == 3 || n == 4
}

// oddPermutation reports whether order is an odd permutation of ref.  Both
// must hold the same distinct values.
func oddPermutation(ref, order []int) bool {
	pos := make(map[int]int, len(ref))
	for k, v := range ref {
		pos[v] = k
	}
	p := make([]int, len(order))
	for k, v := range order {
		p[k] = pos[v]
	}
	odd := false
	for i := range p {
		for j := i + 1; j < len(p); j++ {
			if p[i] > p[j] {
				odd = !odd
			}
		}
	}
	return odd
}

// reorient translates a winding observed over from into the same spatial
// arrangement expressed over to.
func reorient(c Chirality, from, to []int) Chirality {
	if oddPermutation(from, to) {
		return c.flip()
	}
	return c
}

// sameMembers reports whether a and b hold the same values.
func sameMembers(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		if seen[v] == 0 {
			return false
		}
		seen[v]--
	}
	return true
}

//Personal.AI order the ending
