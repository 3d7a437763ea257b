package molecule

import (
	"sort"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Canonical ranking
// ─────────────────────────────────────────────────────────────────────────────

// chargeKey orders neutral atoms first, then cations, then anions.
func chargeKey(c int) int {
	if c < 0 {
		return -2*c + 1
	}
	return 2 * c
}

// canonicalRanks assigns every atom a unique rank that depends only on the
// graph, not on input atom order (up to symmetry-equivalent atoms).  It also
// returns the symmetry classes found before any tie was broken.
//
// Refinement alone can leave non-equivalent atoms in one class, so each tie
// is broken by trying every member of the lowest tied class and keeping the
// refinement with the smallest certificate.  Members with equal certificates
// are interchangeable and the lowest index is kept.
func (m *Molecule) canonicalRanks() (ranks, symmetry []int) {
	n := len(m.atoms)
	keys := make([][]int, n)
	for i, a := range m.atoms {
		aromatic, ring := 0, 0
		if a.Aromatic {
			aromatic = 1
		}
		if m.IsRingAtom(i) {
			ring = 1
		}
		ringBonds := 0
		for _, e := range m.adj[i] {
			if m.IsRingBond(e.bond) {
				ringBonds++
			}
		}
		keys[i] = []int{len(m.adj[i]), a.Number, a.Isotope, chargeKey(a.Charge), m.TotalHydrogens(i),
			aromatic, ring, ringBonds, m.smallestRingSize(i)}
	}
	symmetry = m.refine(denseRank(keys))

	classes := symmetry
	for {
		cell := lowestTiedClass(classes)
		if cell < 0 {
			return classes, symmetry
		}
		var best, bestCert []int
		for i, c := range classes {
			if c != cell {
				continue
			}
			cand := m.refine(individualize(classes, i))
			cert := m.certificate(cand)
			if best == nil || lessInts(cert, bestCert) {
				best, bestCert = cand, cert
			}
		}
		classes = best
	}
}

// lowestTiedClass returns the smallest class shared by more than one atom,
// or -1 when every atom has its own class.
func lowestTiedClass(classes []int) int {
	counts := make(map[int]int, len(classes))
	for _, c := range classes {
		counts[c]++
	}
	cell := -1
	for c, k := range counts {
		if k > 1 && (cell < 0 || c < cell) {
			cell = c
		}
	}
	return cell
}

// individualize splits atom i off from the rest of its class, ranking it
// first.
func individualize(classes []int, i int) []int {
	keys := make([][]int, len(classes))
	for j, c := range classes {
		k := 2 * c
		if c == classes[i] && j != i {
			k++
		}
		keys[j] = []int{k}
	}
	return denseRank(keys)
}

// certificate describes a stable partition without reference to atom
// indices: for each class in order, its size and the sorted neighbour
// classes shared by its members.
func (m *Molecule) certificate(classes []int) []int {
	d := countDistinct(classes)
	rep := make([]int, d)
	size := make([]int, d)
	for c := range rep {
		rep[c] = -1
	}
	for i, c := range classes {
		size[c]++
		if rep[c] < 0 {
			rep[c] = i
		}
	}
	cert := make([]int, 0, 4*d)
	for c := 0; c < d; c++ {
		i := rep[c]
		nb := make([]int, 0, len(m.adj[i]))
		for _, e := range m.adj[i] {
			nb = append(nb, classes[e.atom]*8+int(m.bonds[e.bond].Order))
		}
		sort.Ints(nb)
		cert = append(cert, size[c], len(nb))
		cert = append(cert, nb...)
	}
	return cert
}

// refine iterates neighbourhood refinement until the partition is stable.
func (m *Molecule) refine(classes []int) []int {
	n := len(classes)
	distinct := countDistinct(classes)
	for {
		keys := make([][]int, n)
		for i := range classes {
			nb := make([]int, 0, len(m.adj[i]))
			for _, e := range m.adj[i] {
				nb = append(nb, classes[e.atom]*8+int(m.bonds[e.bond].Order))
			}
			sort.Ints(nb)
			keys[i] = append([]int{classes[i]}, nb...)
		}
		next := denseRank(keys)
		d := countDistinct(next)
		if d == distinct {
			return next
		}
		classes, distinct = next, d
	}
}

func denseRank(keys [][]int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return lessInts(keys[idx[a]], keys[idx[b]]) })
	ranks := make([]int, len(keys))
	r := 0
	for k, i := range idx {
		if k > 0 && lessInts(keys[idx[k-1]], keys[i]) {
			r++
		}
		ranks[i] = r
	}
	return ranks
}

func lessInts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func countDistinct(classes []int) int {
	seen := make(map[int]struct{}, len(classes))
	for _, c := range classes {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// ─────────────────────────────────────────────────────────────────────────────
// Canonical SMILES writer
// ─────────────────────────────────────────────────────────────────────────────

type closure struct {
	bond    int
	partner int
	opening bool
}

type smilesWriter struct {
	m        *Molecule
	ranks    []int
	stereo   []bool
	visited  []bool
	used     []bool
	children [][]int
	closures [][]closure
	digits   map[int]int
	inUse    map[int]bool
	sb       strings.Builder
}

// CanonicalSMILES renders the molecule as a canonical SMILES string.
// Fragments are separated by '.' and ordered by their lowest-ranked atom.
func (m *Molecule) CanonicalSMILES() string {
	if len(m.atoms) == 0 {
		return ""
	}
	ranks, symmetry := m.canonicalRanks()
	w := &smilesWriter{
		m:        m,
		ranks:    ranks,
		stereo:   m.stereoCenters(symmetry),
		visited:  make([]bool, len(m.atoms)),
		used:     make([]bool, len(m.bonds)),
		children: make([][]int, len(m.atoms)),
		closures: make([][]closure, len(m.atoms)),
		digits:   make(map[int]int),
		inUse:    make(map[int]bool),
	}

	order := make([]int, len(m.atoms))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return ranks[order[a]] < ranks[order[b]] })

	first := true
	for _, start := range order {
		if w.visited[start] {
			continue
		}
		w.plan(start, -1)
		if !first {
			w.sb.WriteByte('.')
		}
		first = false
		w.write(start, -1)
	}
	return w.sb.String()
}

// stereoCenters marks the atoms whose chirality is written: a tetrahedral
// neighbourhood whose ligands all fall in different symmetry classes.
func (m *Molecule) stereoCenters(symmetry []int) []bool {
	out := make([]bool, len(m.atoms))
	for i, a := range m.atoms {
		if a.Chirality == ChiralNone || !m.canHoldChirality(i) {
			continue
		}
		seen := make(map[int]bool, len(m.adj[i]))
		distinct := true
		for _, e := range m.adj[i] {
			if seen[symmetry[e.atom]] {
				distinct = false
				break
			}
			seen[symmetry[e.atom]] = true
		}
		out[i] = distinct
	}
	return out
}

func (w *smilesWriter) sortedNeighbors(u int) []edge {
	nb := append([]edge(nil), w.m.adj[u]...)
	sort.Slice(nb, func(a, b int) bool { return w.ranks[nb[a].atom] < w.ranks[nb[b].atom] })
	return nb
}

// plan performs the DFS that fixes branch order and ring closures.
func (w *smilesWriter) plan(u, via int) {
	w.visited[u] = true
	for _, e := range w.sortedNeighbors(u) {
		if e.bond == via || w.used[e.bond] {
			continue
		}
		if w.visited[e.atom] {
			w.used[e.bond] = true
			w.closures[e.atom] = append(w.closures[e.atom], closure{bond: e.bond, partner: u, opening: true})
			w.closures[u] = append(w.closures[u], closure{bond: e.bond, partner: e.atom})
			continue
		}
		w.used[e.bond] = true
		w.children[u] = append(w.children[u], e.atom)
		w.plan(e.atom, e.bond)
	}
}

func (w *smilesWriter) write(u, via int) {
	cl := w.closures[u]
	sort.SliceStable(cl, func(a, b int) bool {
		if cl[a].opening != cl[b].opening {
			return !cl[a].opening
		}
		return w.ranks[cl[a].partner] < w.ranks[cl[b].partner]
	})

	if via >= 0 {
		w.sb.WriteString(w.bondSymbol(via))
	}
	w.sb.WriteString(atomText(w.m, u, w.chirality(u, via)))

	var released []int
	for _, c := range cl {
		if c.opening {
			d := w.nextDigit()
			w.digits[c.bond] = d
			w.inUse[d] = true
			w.sb.WriteString(w.bondSymbol(c.bond))
			w.sb.WriteString(ringDigit(d))
			continue
		}
		d := w.digits[c.bond]
		w.sb.WriteString(ringDigit(d))
		released = append(released, d)
	}
	for _, d := range released {
		delete(w.inUse, d)
	}

	kids := w.children[u]
	for k, v := range kids {
		bond := w.m.BondBetween(u, v)
		if k < len(kids)-1 {
			w.sb.WriteByte('(')
			w.write(v, bond)
			w.sb.WriteByte(')')
		} else {
			w.write(v, bond)
		}
	}
}

func (w *smilesWriter) nextDigit() int {
	for d := 1; ; d++ {
		if !w.inUse[d] {
			return d
		}
	}
}

func ringDigit(d int) string {
	if d < 10 {
		return strconv.Itoa(d)
	}
	return "%" + strconv.Itoa(d)
}

func (w *smilesWriter) bondSymbol(b int) string {
	bond := w.m.bonds[b]
	switch bond.Order {
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondSingle:
		if w.m.atoms[bond.Begin].Aromatic && w.m.atoms[bond.End].Aromatic {
			return "-"
		}
	}
	return ""
}

// chirality returns the descriptor to write for u given the order in which
// its neighbours appear in the output: the parent, the folded hydrogen,
// ring closures in digit order, then branches.
func (w *smilesWriter) chirality(u, via int) Chirality {
	if !w.stereo[u] {
		return ChiralNone
	}
	written := make([]int, 0, 4)
	if via >= 0 {
		written = append(written, w.m.bonds[via].Other(u))
	}
	if w.m.atoms[u].Hydrogens == 1 {
		written = append(written, implicitH)
	}
	for _, c := range w.closures[u] {
		written = append(written, c.partner)
	}
	written = append(written, w.children[u]...)
	return reorient(w.m.atoms[u].Chirality, w.m.stereoRef(u), written)
}

// atomText renders a single atom, using brackets only when the organic
// subset rules would not reproduce it exactly or a stereo descriptor is
// written.
func atomText(m *Molecule, i int, chirality Chirality) string {
	a := m.atoms[i]
	symbol := a.Symbol()
	if a.Aromatic {
		symbol = strings.ToLower(symbol)
	}

	bare := a.Charge == 0 && a.Isotope == 0 && a.MapNum == 0 && chirality == ChiralNone
	if bare {
		switch {
		case a.Number == 0:
			bare = a.Hydrogens == 0
		case !organicSubset(a.Number):
			bare = false
		case a.Aromatic && !aromaticCapable(a.Number):
			bare = false
		default:
			bare = a.Hydrogens == implicitHydrogens(a.Number, a.Aromatic, m.explicitValence(i))
		}
	}
	if bare {
		return symbol
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(symbol)
	sb.WriteString(chirality.String())
	if a.Hydrogens > 0 {
		sb.WriteByte('H')
		if a.Hydrogens > 1 {
			sb.WriteString(strconv.Itoa(a.Hydrogens))
		}
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		sb.WriteString("-" + strconv.Itoa(-a.Charge))
	}
	if a.MapNum > 0 {
		sb.WriteString(":" + strconv.Itoa(a.MapNum))
	}
	sb.WriteByte(']')
	return sb.String()
}

//Personal.AI order the ending
