// Package molecule is the chemistry core of ToxPredict.  It parses SMILES
// into an immutable molecular graph, sanitizes and canonicalizes it, matches
// SMARTS patterns, applies the ionization standardization rules and derives
// the 167-bit MACCS structural fingerprint used for applicability-domain
// similarity and model features.
package molecule

import (
	"sort"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Graph primitives
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder is the order of a bond.  Aromatic bonds carry their own order
// rather than a Kekulé assignment.
type BondOrder uint8

const (
	BondSingle   BondOrder = 1
	BondDouble   BondOrder = 2
	BondTriple   BondOrder = 3
	BondAromatic BondOrder = 4
)

// valence returns the integer contribution of the bond to an atom's
// explicit valence, with aromatic bonds counted as one.
func (o BondOrder) valence() int {
	if o == BondAromatic {
		return 1
	}
	return int(o)
}

// Atom is one vertex of the molecular graph.
type Atom struct {
	// Number is the atomic number; 0 denotes the wildcard atom.
	Number int
	// Charge is the formal charge.
	Charge int
	// Isotope is the mass number, 0 when unspecified.
	Isotope int
	// Aromatic is set for atoms in a perceived (or written) aromatic ring.
	Aromatic bool
	// Hydrogens is the count of hydrogens folded into this atom.  Hydrogen
	// atoms written as separate graph vertices are not included.
	Hydrogens int
	// Bracket records that the atom was written in brackets, so its
	// hydrogen count is explicit rather than derived.
	Bracket bool
	// MapNum is the SMILES atom class, 0 when absent.
	MapNum int
	// Chirality is the tetrahedral winding over the atom's stereo
	// reference order (see stereoRef).
	Chirality Chirality
}

// Chirality is a tetrahedral stereo descriptor.
type Chirality uint8

const (
	ChiralNone Chirality = iota
	// ChiralCCW is written '@': the remaining neighbours turn anticlockwise
	// when viewed from the first.
	ChiralCCW
	// ChiralCW is written '@@'.
	ChiralCW
)

func (c Chirality) flip() Chirality {
	switch c {
	case ChiralCCW:
		return ChiralCW
	case ChiralCW:
		return ChiralCCW
	}
	return c
}

func (c Chirality) String() string {
	switch c {
	case ChiralCCW:
		return "@"
	case ChiralCW:
		return "@@"
	}
	return ""
}

// Symbol returns the element symbol of the atom.
func (a Atom) Symbol() string { return ElementSymbol(a.Number) }

// Bond is one edge of the molecular graph.
type Bond struct {
	Begin int
	End   int
	Order BondOrder
}

// Other returns the endpoint of b that is not atom.
func (b Bond) Other(atom int) int {
	if b.Begin == atom {
		return b.End
	}
	return b.Begin
}

type edge struct {
	atom int
	bond int
}

// ─────────────────────────────────────────────────────────────────────────────
// Molecule
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is an immutable molecular graph.  Values are only produced by
// Parse and the Standardizer; every transformation works on a private copy.
// A *Molecule is safe for concurrent readers.
type Molecule struct {
	atoms []Atom
	bonds []Bond
	adj   [][]edge

	ringOnce sync.Once
	rings    *ringInfo
}

// newMolecule wires adjacency for the given atoms and bonds.  The slices are
// owned by the returned molecule.
func newMolecule(atoms []Atom, bonds []Bond) *Molecule {
	m := &Molecule{atoms: atoms, bonds: bonds, adj: make([][]edge, len(atoms))}
	for i, b := range bonds {
		m.adj[b.Begin] = append(m.adj[b.Begin], edge{atom: b.End, bond: i})
		m.adj[b.End] = append(m.adj[b.End], edge{atom: b.Begin, bond: i})
	}
	return m
}

// clone returns a deep copy without perceived ring information.
func (m *Molecule) clone() *Molecule {
	atoms := make([]Atom, len(m.atoms))
	copy(atoms, m.atoms)
	bonds := make([]Bond, len(m.bonds))
	copy(bonds, m.bonds)
	return newMolecule(atoms, bonds)
}

// NumAtoms returns the number of graph vertices, explicit hydrogens included.
func (m *Molecule) NumAtoms() int { return len(m.atoms) }

// NumBonds returns the number of bonds.
func (m *Molecule) NumBonds() int { return len(m.bonds) }

// Atom returns a copy of atom i.
func (m *Molecule) Atom(i int) Atom { return m.atoms[i] }

// Bond returns a copy of bond i.
func (m *Molecule) Bond(i int) Bond { return m.bonds[i] }

// Degree returns the number of explicit neighbours of atom i.
func (m *Molecule) Degree(i int) int { return len(m.adj[i]) }

// Neighbors returns the indices of the atoms bonded to atom i.
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, len(m.adj[i]))
	for k, e := range m.adj[i] {
		out[k] = e.atom
	}
	return out
}

// BondBetween returns the index of the bond joining a and b, or -1.
func (m *Molecule) BondBetween(a, b int) int {
	for _, e := range m.adj[a] {
		if e.atom == b {
			return e.bond
		}
	}
	return -1
}

// TotalHydrogens returns the folded hydrogen count plus hydrogen neighbours.
func (m *Molecule) TotalHydrogens(i int) int {
	h := m.atoms[i].Hydrogens
	for _, e := range m.adj[i] {
		if m.atoms[e.atom].Number == numH {
			h++
		}
	}
	return h
}

// explicitValence sums the bond orders around atom i with aromatic bonds
// counted as one.
func (m *Molecule) explicitValence(i int) int {
	v := 0
	for _, e := range m.adj[i] {
		v += m.bonds[e.bond].Order.valence()
	}
	return v
}

// HeavyAtomCount returns the number of non-hydrogen atoms.
func (m *Molecule) HeavyAtomCount() int {
	n := 0
	for _, a := range m.atoms {
		if a.Number != numH {
			n++
		}
	}
	return n
}

// Formula returns the Hill-order molecular formula, with the net charge
// appended when non-zero.
func (m *Molecule) Formula() string {
	counts := make(map[int]int)
	charge := 0
	for _, a := range m.atoms {
		counts[a.Number]++
		counts[numH] += a.Hydrogens
		charge += a.Charge
	}
	var numbers []int
	for n := range counts {
		if n != numC && n != numH && counts[n] > 0 {
			numbers = append(numbers, n)
		}
	}
	sort.Slice(numbers, func(i, j int) bool { return ElementSymbol(numbers[i]) < ElementSymbol(numbers[j]) })

	var out []byte
	write := func(n int) {
		if counts[n] == 0 {
			return
		}
		out = append(out, ElementSymbol(n)...)
		if counts[n] > 1 {
			out = appendInt(out, counts[n])
		}
	}
	if counts[numC] > 0 {
		write(numC)
		write(numH)
		for _, n := range numbers {
			write(n)
		}
	} else {
		all := append([]int{}, numbers...)
		if counts[numH] > 0 {
			all = append(all, numH)
		}
		sort.Slice(all, func(i, j int) bool { return ElementSymbol(all[i]) < ElementSymbol(all[j]) })
		for _, n := range all {
			write(n)
		}
	}
	switch {
	case charge == 1:
		out = append(out, '+')
	case charge == -1:
		out = append(out, '-')
	case charge > 1:
		out = appendInt(append(out, '+'), charge)
	case charge < -1:
		out = appendInt(append(out, '-'), -charge)
	}
	return string(out)
}

func appendInt(b []byte, n int) []byte {
	if n >= 10 {
		b = appendInt(b, n/10)
	}
	return append(b, byte('0'+n%10))
}

// ─────────────────────────────────────────────────────────────────────────────
// Fragments
// ─────────────────────────────────────────────────────────────────────────────

// fragmentLabels assigns each atom the index of its connected component.
// Components are numbered in order of their lowest atom index.
func (m *Molecule) fragmentLabels() ([]int, int) {
	labels := make([]int, len(m.atoms))
	for i := range labels {
		labels[i] = -1
	}
	n := 0
	stack := make([]int, 0, len(m.atoms))
	for start := range m.atoms {
		if labels[start] >= 0 {
			continue
		}
		labels[start] = n
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e := range m.adj[cur] {
				if labels[e.atom] < 0 {
					labels[e.atom] = n
					stack = append(stack, e.atom)
				}
			}
		}
		n++
	}
	return labels, n
}

// NumFragments returns the number of disconnected components.
func (m *Molecule) NumFragments() int {
	_, n := m.fragmentLabels()
	return n
}

// Fragments splits the molecule into its connected components, in order of
// their lowest atom index.  Atom order inside each fragment is preserved.
func (m *Molecule) Fragments() []*Molecule {
	labels, n := m.fragmentLabels()
	if n <= 1 {
		return []*Molecule{m}
	}
	remap := make([]int, len(m.atoms))
	atoms := make([][]Atom, n)
	for i, a := range m.atoms {
		f := labels[i]
		remap[i] = len(atoms[f])
		atoms[f] = append(atoms[f], a)
	}
	bonds := make([][]Bond, n)
	for _, b := range m.bonds {
		f := labels[b.Begin]
		bonds[f] = append(bonds[f], Bond{Begin: remap[b.Begin], End: remap[b.End], Order: b.Order})
	}
	out := make([]*Molecule, n)
	for f := 0; f < n; f++ {
		out[f] = newMolecule(atoms[f], bonds[f])
	}
	return out
}

// LargestFragment returns the fragment with the most atoms.  Ties go to the
// fragment that appears first.
func (m *Molecule) LargestFragment() *Molecule {
	frags := m.Fragments()
	best := frags[0]
	for _, f := range frags[1:] {
		if f.NumAtoms() > best.NumAtoms() {
			best = f
		}
	}
	return best
}

//Personal.AI order the ending
