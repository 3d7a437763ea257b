package molecule

import (
	"fmt"
)

// SanitizeError reports a structural validity failure on a specific atom.
type SanitizeError struct {
	Atom   int
	Reason string
}

func (e *SanitizeError) Error() string {
	return fmt.Sprintf("sanitize: %s (atom %d)", e.Reason, e.Atom)
}

// Sanitize validates a parsed molecule and returns a sanitized copy:
// aromatic flags are checked for ring membership, the aromatic system is
// kekulized, valences are checked against the charge-adjusted limits of
// each element, and aromaticity is re-perceived with the Hückel rule.
// The input molecule is not modified.
func Sanitize(m *Molecule) (*Molecule, error) {
	out := m.clone()
	ri := out.ringData()

	for i, b := range out.bonds {
		if b.Order != BondAromatic {
			continue
		}
		if !out.atoms[b.Begin].Aromatic || !out.atoms[b.End].Aromatic {
			return nil, &SanitizeError{Atom: b.Begin, Reason: "aromatic bond on a non-aromatic atom"}
		}
		if !ri.inRing[i] {
			out.bonds[i].Order = BondSingle
		}
	}
	for i, a := range out.atoms {
		if a.Aromatic && !ri.atomInRing[i] {
			return nil, &SanitizeError{Atom: i, Reason: "non-ring atom marked aromatic"}
		}
		if a.Hydrogens < 0 {
			return nil, &SanitizeError{Atom: i, Reason: "negative hydrogen count"}
		}
	}

	if err := out.kekulize(); err != nil {
		return nil, err
	}
	if err := out.checkValences(); err != nil {
		return nil, err
	}
	out.perceiveAromaticity()
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Kekulization
// ─────────────────────────────────────────────────────────────────────────────

// kekulize replaces aromatic bonds with an alternating single/double
// assignment and clears the aromatic atom flags.
func (m *Molecule) kekulize() error {
	n := len(m.atoms)
	needs := make([]bool, n)
	hasAromatic := false
	for i, a := range m.atoms {
		if !a.Aromatic {
			continue
		}
		hasAromatic = true
		need, err := m.needsPiBond(i)
		if err != nil {
			return err
		}
		needs[i] = need
	}
	if !hasAromatic {
		return nil
	}

	mate := make([]int, n)
	for i := range mate {
		mate[i] = -1
	}
	if !m.matchPiBonds(needs, mate) {
		for i := range needs {
			if needs[i] && mate[i] < 0 {
				return &SanitizeError{Atom: i, Reason: "can't kekulize aromatic system"}
			}
		}
		return &SanitizeError{Atom: 0, Reason: "can't kekulize aromatic system"}
	}

	for i, b := range m.bonds {
		if b.Order != BondAromatic {
			continue
		}
		if mate[b.Begin] == b.End {
			m.bonds[i].Order = BondDouble
		} else {
			m.bonds[i].Order = BondSingle
		}
	}
	for i := range m.atoms {
		m.atoms[i].Aromatic = false
	}
	return nil
}

// needsPiBond decides whether aromatic atom i must take a double bond in the
// Kekulé structure, from its hydrogens, bonds and charge-adjusted valence.
func (m *Molecule) needsPiBond(i int) (bool, error) {
	a := m.atoms[i]
	for _, e := range m.adj[i] {
		if o := m.bonds[e.bond].Order; o == BondDouble || o == BondTriple {
			return false, nil
		}
	}
	vals := valenceList(a.Number, a.Charge)
	if len(vals) == 0 {
		return false, nil
	}
	total := m.explicitValence(i) + a.Hydrogens
	for _, v := range vals {
		if v >= total {
			return v-total >= 1, nil
		}
	}
	return false, &SanitizeError{Atom: i, Reason: fmt.Sprintf("explicit valence %d for %s exceeds the allowed maximum", total, a.Symbol())}
}

// matchPiBonds finds a perfect matching of the atoms flagged in needs along
// aromatic bonds, most-constrained atom first.
func (m *Molecule) matchPiBonds(needs []bool, mate []int) bool {
	best, bestOptions := -1, 0
	for i := range needs {
		if !needs[i] || mate[i] >= 0 {
			continue
		}
		options := 0
		for _, e := range m.adj[i] {
			if m.bonds[e.bond].Order == BondAromatic && needs[e.atom] && mate[e.atom] < 0 {
				options++
			}
		}
		if best < 0 || options < bestOptions {
			best, bestOptions = i, options
		}
		if options == 0 {
			return false
		}
	}
	if best < 0 {
		return true
	}
	for _, e := range m.adj[best] {
		if m.bonds[e.bond].Order != BondAromatic || !needs[e.atom] || mate[e.atom] >= 0 {
			continue
		}
		mate[best], mate[e.atom] = e.atom, best
		if m.matchPiBonds(needs, mate) {
			return true
		}
		mate[best], mate[e.atom] = -1, -1
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Valence
// ─────────────────────────────────────────────────────────────────────────────

func (m *Molecule) checkValences() error {
	for i, a := range m.atoms {
		vals := valenceList(a.Number, a.Charge)
		if len(vals) == 0 {
			continue
		}
		total := m.explicitValence(i) + a.Hydrogens
		if limit := vals[len(vals)-1]; total > limit {
			return &SanitizeError{Atom: i, Reason: fmt.Sprintf("explicit valence %d for %s%+d exceeds %d", total, a.Symbol(), a.Charge, limit)}
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Aromaticity
// ─────────────────────────────────────────────────────────────────────────────

// piElectrons returns the number of electrons atom i donates to a ring pi
// system in the Kekulé structure, or -1 if it cannot take part in one.
func (m *Molecule) piElectrons(i int) int {
	if !m.ringData().atomInRing[i] {
		return -1
	}
	a := m.atoms[i]
	doubles := 0
	electrons := -1
	for _, e := range m.adj[i] {
		switch m.bonds[e.bond].Order {
		case BondTriple:
			return -1
		case BondDouble:
			doubles++
			if m.ringData().inRing[e.bond] {
				electrons = 1
				continue
			}
			switch m.atoms[e.atom].Number {
			case numO, numN, numS:
				electrons = 0
			default:
				return -1
			}
		}
	}
	if doubles > 1 {
		return -1
	}
	if doubles == 1 {
		return electrons
	}

	connections := len(m.adj[i]) + a.Hydrogens
	switch a.Number {
	case numC:
		switch a.Charge {
		case -1:
			return 2
		case 1:
			return 0
		}
	case numN, numP, 33:
		if a.Charge == 0 && connections == 3 {
			return 2
		}
		if a.Charge == -1 && connections == 2 {
			return 2
		}
	case numO, numS, numSe, numTe:
		if a.Charge == 0 && connections == 2 {
			return 2
		}
	case numB:
		if a.Charge == 0 && connections == 3 {
			return 0
		}
	}
	return -1
}

// perceiveAromaticity marks rings that satisfy the 4n+2 rule, first for
// single SSSR rings and then for pairs of fused rings.
func (m *Molecule) perceiveAromaticity() {
	ri := m.ringData()
	if len(ri.rings) == 0 {
		return
	}
	electrons := make([]int, len(m.atoms))
	for i := range m.atoms {
		electrons[i] = m.piElectrons(i)
	}

	candidate := make([]bool, len(ri.rings))
	aromatic := make([]bool, len(ri.rings))
	for r, atoms := range ri.rings {
		candidate[r] = true
		sum := 0
		for _, a := range atoms {
			if electrons[a] < 0 {
				candidate[r] = false
				break
			}
			sum += electrons[a]
		}
		if candidate[r] && sum%4 == 2 {
			aromatic[r] = true
		}
	}

	fused := make([][2]int, 0)
	for r := range ri.rings {
		for s := r + 1; s < len(ri.rings); s++ {
			if !candidate[r] || !candidate[s] || (aromatic[r] && aromatic[s]) {
				continue
			}
			if !sharesBond(ri.ringBonds[r], ri.ringBonds[s]) {
				continue
			}
			seen := make(map[int]bool)
			sum := 0
			for _, a := range append(append([]int(nil), ri.rings[r]...), ri.rings[s]...) {
				if !seen[a] {
					seen[a] = true
					sum += electrons[a]
				}
			}
			if sum%4 == 2 {
				fused = append(fused, [2]int{r, s})
			}
		}
	}
	for _, pair := range fused {
		aromatic[pair[0]], aromatic[pair[1]] = true, true
	}

	for r, isAromatic := range aromatic {
		if !isAromatic {
			continue
		}
		for _, b := range ri.ringBonds[r] {
			m.bonds[b].Order = BondAromatic
		}
		for _, a := range ri.rings[r] {
			m.atoms[a].Aromatic = true
		}
	}
}

func sharesBond(a, b []int) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}

//Personal.AI order the ending
