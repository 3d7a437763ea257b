package molecule

import (
	"sort"
)

// ringInfo holds the ring perception results for a molecule.
type ringInfo struct {
	// inRing marks bonds that are not bridges.
	inRing []bool
	// atomInRing marks atoms incident to at least one ring bond.
	atomInRing []bool
	// rings is the smallest set of smallest rings; each entry lists the
	// ring atoms in cyclic order.
	rings [][]int
	// ringBonds lists the bonds of each ring.
	ringBonds [][]int
	// atomRings lists, per atom, the indices of the rings containing it.
	atomRings [][]int
}

// ringData returns the ring perception results, computing them on first use.
func (m *Molecule) ringData() *ringInfo {
	m.ringOnce.Do(func() {
		if m.rings == nil {
			m.rings = perceiveRings(m)
		}
	})
	return m.rings
}

// IsRingBond reports whether bond i belongs to a ring.
func (m *Molecule) IsRingBond(i int) bool { return m.ringData().inRing[i] }

// IsRingAtom reports whether atom i belongs to a ring.
func (m *Molecule) IsRingAtom(i int) bool { return m.ringData().atomInRing[i] }

// NumRings returns the size of the smallest set of smallest rings.
func (m *Molecule) NumRings() int { return len(m.ringData().rings) }

// Rings returns copies of the SSSR rings as atom index cycles.
func (m *Molecule) Rings() [][]int {
	ri := m.ringData()
	out := make([][]int, len(ri.rings))
	for i, r := range ri.rings {
		out[i] = append([]int(nil), r...)
	}
	return out
}

// NumAromaticRings counts SSSR rings whose bonds are all aromatic.
func (m *Molecule) NumAromaticRings() int {
	ri := m.ringData()
	n := 0
	for _, bonds := range ri.ringBonds {
		aromatic := true
		for _, b := range bonds {
			if m.bonds[b].Order != BondAromatic {
				aromatic = false
				break
			}
		}
		if aromatic {
			n++
		}
	}
	return n
}

// ringCount is the number of SSSR rings containing atom i.
func (m *Molecule) ringCount(i int) int { return len(m.ringData().atomRings[i]) }

// smallestRingSize is the size of the smallest SSSR ring containing atom i,
// or 0 for acyclic atoms.
func (m *Molecule) smallestRingSize(i int) int {
	ri := m.ringData()
	best := 0
	for _, r := range ri.atomRings[i] {
		if n := len(ri.rings[r]); best == 0 || n < best {
			best = n
		}
	}
	return best
}

func perceiveRings(m *Molecule) *ringInfo {
	ri := &ringInfo{
		inRing:     make([]bool, len(m.bonds)),
		atomInRing: make([]bool, len(m.atoms)),
		atomRings:  make([][]int, len(m.atoms)),
	}
	bridges := findBridges(m)
	for i := range m.bonds {
		if !bridges[i] {
			ri.inRing[i] = true
			ri.atomInRing[m.bonds[i].Begin] = true
			ri.atomInRing[m.bonds[i].End] = true
		}
	}

	for _, system := range ringSystems(m, ri.inRing) {
		for _, c := range smallestRings(m, ri.inRing, system) {
			idx := len(ri.rings)
			ri.rings = append(ri.rings, c.atoms)
			ri.ringBonds = append(ri.ringBonds, c.bonds)
			for _, a := range c.atoms {
				ri.atomRings[a] = append(ri.atomRings[a], idx)
			}
		}
	}
	return ri
}

// findBridges marks the bonds whose removal disconnects the graph.
func findBridges(m *Molecule) []bool {
	n := len(m.atoms)
	bridges := make([]bool, len(m.bonds))
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0
	var visit func(u, viaBond int)
	visit = func(u, viaBond int) {
		disc[u], low[u] = timer, timer
		timer++
		for _, e := range m.adj[u] {
			if e.bond == viaBond {
				continue
			}
			if disc[e.atom] < 0 {
				visit(e.atom, e.bond)
				if low[e.atom] < low[u] {
					low[u] = low[e.atom]
				}
				if low[e.atom] > disc[u] {
					bridges[e.bond] = true
				}
			} else if disc[e.atom] < low[u] {
				low[u] = disc[e.atom]
			}
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] < 0 {
			visit(i, -1)
		}
	}
	return bridges
}

type ringSystem struct {
	atoms []int
	bonds []int
}

// ringSystems groups ring bonds into connected systems.
func ringSystems(m *Molecule, inRing []bool) []ringSystem {
	seen := make([]bool, len(m.atoms))
	var out []ringSystem
	for start := range m.atoms {
		if seen[start] {
			continue
		}
		hasRingBond := false
		for _, e := range m.adj[start] {
			if inRing[e.bond] {
				hasRingBond = true
				break
			}
		}
		if !hasRingBond {
			continue
		}
		var sys ringSystem
		bondSeen := make(map[int]bool)
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sys.atoms = append(sys.atoms, u)
			for _, e := range m.adj[u] {
				if !inRing[e.bond] {
					continue
				}
				if !bondSeen[e.bond] {
					bondSeen[e.bond] = true
					sys.bonds = append(sys.bonds, e.bond)
				}
				if !seen[e.atom] {
					seen[e.atom] = true
					stack = append(stack, e.atom)
				}
			}
		}
		sort.Ints(sys.atoms)
		sort.Ints(sys.bonds)
		out = append(out, sys)
	}
	return out
}

type cycle struct {
	atoms []int
	bonds []int
	set   bitset
}

// smallestRings returns the SSSR of one ring system: Horton candidate cycles
// sorted by size and filtered for independence over GF(2).
func smallestRings(m *Molecule, inRing []bool, sys ringSystem) []cycle {
	want := len(sys.bonds) - len(sys.atoms) + 1
	if want <= 0 {
		return nil
	}

	candidates := make([]cycle, 0)
	seen := make(map[string]bool)
	addCandidate := func(c cycle) {
		key := c.set.key()
		if seen[key] {
			return
		}
		seen[key] = true
		candidates = append(candidates, c)
	}

	for _, root := range sys.atoms {
		parent, parentBond, dist := ringBFS(m, inRing, root)
		for _, b := range sys.bonds {
			x, y := m.bonds[b].Begin, m.bonds[b].End
			if dist[x] < 0 || dist[y] < 0 {
				continue
			}
			if parentBond[x] == b || parentBond[y] == b {
				continue
			}
			px := pathToRoot(x, parent)
			py := pathToRoot(y, parent)
			if !disjointExceptRoot(px, py) {
				continue
			}
			atoms := make([]int, 0, len(px)+len(py)-1)
			for i := len(px) - 1; i >= 0; i-- {
				atoms = append(atoms, px[i])
			}
			for i := 0; i < len(py)-1; i++ {
				atoms = append(atoms, py[i])
			}
			c := cycle{atoms: atoms, set: newBitset(len(m.bonds))}
			for i := range atoms {
				bi := m.BondBetween(atoms[i], atoms[(i+1)%len(atoms)])
				c.bonds = append(c.bonds, bi)
				c.set.set(bi)
			}
			addCandidate(c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].bonds) < len(candidates[j].bonds)
	})

	var basis []bitset
	var pivots []int
	var out []cycle
	for _, c := range candidates {
		if len(out) == want {
			break
		}
		v := c.set.clone()
		for k, bv := range basis {
			if v.get(pivots[k]) {
				v.xor(bv)
			}
		}
		p := v.first()
		if p < 0 {
			continue
		}
		// Keep the basis in reduced form so later reductions stay single-pass.
		for k := range basis {
			if basis[k].get(p) {
				basis[k].xor(v)
			}
		}
		basis = append(basis, v)
		pivots = append(pivots, p)
		sortedBonds := append([]int(nil), c.bonds...)
		sort.Ints(sortedBonds)
		out = append(out, cycle{atoms: c.atoms, bonds: sortedBonds, set: c.set})
	}
	return out
}

func ringBFS(m *Molecule, inRing []bool, root int) (parent, parentBond, dist []int) {
	n := len(m.atoms)
	parent = make([]int, n)
	parentBond = make([]int, n)
	dist = make([]int, n)
	for i := range dist {
		dist[i], parent[i], parentBond[i] = -1, -1, -1
	}
	dist[root] = 0
	queue := []int{root}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, e := range m.adj[u] {
			if !inRing[e.bond] || dist[e.atom] >= 0 {
				continue
			}
			dist[e.atom] = dist[u] + 1
			parent[e.atom] = u
			parentBond[e.atom] = e.bond
			queue = append(queue, e.atom)
		}
	}
	return parent, parentBond, dist
}

// pathToRoot returns the BFS tree path from v up to the root, v first.
func pathToRoot(v int, parent []int) []int {
	path := []int{v}
	for parent[v] >= 0 {
		v = parent[v]
		path = append(path, v)
	}
	return path
}

func disjointExceptRoot(a, b []int) bool {
	in := make(map[int]bool, len(a))
	for _, v := range a[:len(a)-1] {
		in[v] = true
	}
	for _, v := range b[:len(b)-1] {
		if in[v] {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
