package molecule

import (
	"sort"
	"strconv"
	"strings"
)

// matchContext carries per-molecule state shared by every pattern evaluated
// against it, such as memoized recursive SMARTS results.
type matchContext struct {
	m         *Molecule
	recursive map[*Pattern][]int8
}

func newMatchContext(m *Molecule) *matchContext {
	return &matchContext{m: m, recursive: make(map[*Pattern][]int8)}
}

func (c *matchContext) recursiveMatch(p *Pattern, atom int) bool {
	memo, ok := c.recursive[p]
	if !ok {
		memo = make([]int8, len(c.m.atoms))
		c.recursive[p] = memo
	}
	switch memo[atom] {
	case 1:
		return true
	case 2:
		return false
	}
	found := false
	s := newSearch(p, c, func([]int) bool {
		found = true
		return false
	})
	s.fixed = atom
	s.run()
	if found {
		memo[atom] = 1
	} else {
		memo[atom] = 2
	}
	return found
}

// search is a backtracking subgraph-isomorphism search of one pattern.
type search struct {
	p       *Pattern
	c       *matchContext
	mapping []int
	used    []bool
	fixed   int
	onMatch func(mapping []int) bool
	stopped bool
}

func newSearch(p *Pattern, c *matchContext, onMatch func([]int) bool) *search {
	return &search{
		p:       p,
		c:       c,
		mapping: make([]int, len(p.atoms)),
		used:    make([]bool, len(c.m.atoms)),
		fixed:   -1,
		onMatch: onMatch,
	}
}

func (s *search) run() {
	if len(s.p.atoms) == 0 || len(s.c.m.atoms) == 0 {
		return
	}
	s.extend(0)
}

func (s *search) extend(q int) {
	if s.stopped {
		return
	}
	if q == len(s.p.atoms) {
		if !s.onMatch(s.mapping) {
			s.stopped = true
		}
		return
	}
	m := s.c.m
	try := func(cand int) {
		if s.stopped || s.used[cand] || !s.p.atoms[q].expr.matchAtom(s.c, cand) {
			return
		}
		for _, e := range s.p.adj[q] {
			if e.atom >= q {
				continue
			}
			b := m.BondBetween(s.mapping[e.atom], cand)
			if b < 0 || !s.p.bonds[e.bond].expr.matchBond(m, b) {
				return
			}
		}
		s.mapping[q] = cand
		s.used[cand] = true
		s.extend(q + 1)
		s.used[cand] = false
	}

	if q == 0 && s.fixed >= 0 {
		try(s.fixed)
		return
	}
	if ab := s.p.anchor[q]; ab >= 0 {
		qb := s.p.bonds[ab]
		parent := qb.begin
		if parent == q {
			parent = qb.end
		}
		for _, e := range m.adj[s.mapping[parent]] {
			try(e.atom)
		}
		return
	}
	for cand := range m.atoms {
		try(cand)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Public matching API
// ─────────────────────────────────────────────────────────────────────────────

// HasMatch reports whether the pattern occurs in the molecule.
func (p *Pattern) HasMatch(m *Molecule) bool {
	return p.hasMatch(newMatchContext(m))
}

func (p *Pattern) hasMatch(c *matchContext) bool {
	found := false
	newSearch(p, c, func([]int) bool {
		found = true
		return false
	}).run()
	return found
}

// FindMatches returns the matches of the pattern in discovery order, one per
// distinct set of molecule atoms.  Each match maps query atom index to
// molecule atom index.  A limit > 0 stops the search after that many matches.
func (p *Pattern) FindMatches(m *Molecule, limit int) [][]int {
	return p.findMatches(newMatchContext(m), limit)
}

func (p *Pattern) findMatches(c *matchContext, limit int) [][]int {
	var out [][]int
	seen := make(map[string]bool)
	newSearch(p, c, func(mapping []int) bool {
		key := atomSetKey(mapping)
		if !seen[key] {
			seen[key] = true
			out = append(out, append([]int(nil), mapping...))
		}
		return limit <= 0 || len(out) < limit
	}).run()
	return out
}

// CountMatches returns the number of unique matches, counting at most limit
// when limit > 0.
func (p *Pattern) CountMatches(m *Molecule, limit int) int {
	return len(p.FindMatches(m, limit))
}

func atomSetKey(mapping []int) string {
	sorted := append([]int(nil), mapping...)
	sort.Ints(sorted)
	var sb strings.Builder
	for _, a := range sorted {
		sb.WriteString(strconv.Itoa(a))
		sb.WriteByte(',')
	}
	return sb.String()
}

//Personal.AI order the ending
