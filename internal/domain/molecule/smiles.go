package molecule

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseError reports a SMILES syntax problem together with the byte offset
// at which it was detected.
type ParseError struct {
	Input  string
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("smiles: %s at position %d in %q", e.Reason, e.Pos, e.Input)
}

type ringBond struct {
	atom     int
	slot     int
	order    BondOrder
	hasOrder bool
}

type smilesParser struct {
	src   string
	pos   int
	atoms []Atom
	bonds []Bond
	// written holds each atom's neighbours in the order they appear in the
	// input, which is the order its stereo descriptor refers to.
	written [][]int

	prev     int
	branches []int
	rings    map[int]ringBond

	pending    BondOrder
	hasPending bool
}

// ParseSMILES reads a SMILES string into a molecular graph without
// sanitizing it: implicit hydrogens are assigned by the organic-subset rules
// but valences, aromaticity and ring perception are left for Sanitize.
// Parsing stops at the first whitespace, so "CCO ethanol" reads "CCO".
func ParseSMILES(smiles string) (*Molecule, error) {
	src := strings.TrimSpace(smiles)
	if i := strings.IndexFunc(src, unicode.IsSpace); i >= 0 {
		src = src[:i]
	}
	p := &smilesParser{src: src, prev: -1, rings: make(map[int]ringBond)}
	if err := p.parse(); err != nil {
		return nil, err
	}
	m := newMolecule(p.atoms, p.bonds)
	for i := range m.atoms {
		a := &m.atoms[i]
		if a.Chirality != ChiralNone {
			if ref := m.stereoRef(i); m.canHoldChirality(i) && sameMembers(ref, p.written[i]) {
				a.Chirality = reorient(a.Chirality, p.written[i], ref)
			} else {
				a.Chirality = ChiralNone
			}
		}
		if a.Bracket || a.Number == 0 {
			continue
		}
		a.Hydrogens = implicitHydrogens(a.Number, a.Aromatic, m.explicitValence(i))
	}
	return m, nil
}

// Parse reads and sanitizes a SMILES string.
func Parse(smiles string) (*Molecule, error) {
	m, err := ParseSMILES(smiles)
	if err != nil {
		return nil, err
	}
	return Sanitize(m)
}

func (p *smilesParser) fail(reason string) error {
	return &ParseError{Input: p.src, Pos: p.pos, Reason: reason}
}

func (p *smilesParser) parse() error {
	if p.src == "" {
		return p.fail("empty input")
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch without a preceding atom")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++
		case c == ')':
			if len(p.branches) == 0 {
				return p.fail("unbalanced ')'")
			}
			if p.hasPending {
				return p.fail("bond before ')'")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case c == '.':
			if p.hasPending {
				return p.fail("bond before '.'")
			}
			if len(p.branches) > 0 {
				return p.fail("'.' inside a branch")
			}
			p.prev = -1
			p.pos++
		case c == '-' || c == '=' || c == '#' || c == ':' || c == '/' || c == '\\':
			if p.hasPending {
				return p.fail("consecutive bond symbols")
			}
			if p.prev < 0 {
				return p.fail("bond without a preceding atom")
			}
			p.pending, p.hasPending = bondFromSymbol(c), true
			p.pos++
		case c >= '0' && c <= '9' || c == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}
	if p.hasPending {
		return p.fail("dangling bond")
	}
	if len(p.branches) > 0 {
		return p.fail("unclosed branch")
	}
	if len(p.rings) > 0 {
		return p.fail("unclosed ring")
	}
	return nil
}

func bondFromSymbol(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

func (p *smilesParser) addAtom(a Atom) error {
	idx := len(p.atoms)
	p.atoms = append(p.atoms, a)
	p.written = append(p.written, nil)
	if p.prev >= 0 {
		p.written[p.prev] = append(p.written[p.prev], idx)
		p.written[idx] = append(p.written[idx], p.prev)
	}
	if a.Chirality != ChiralNone && a.Hydrogens == 1 {
		p.written[idx] = append(p.written[idx], implicitH)
	}
	if p.prev >= 0 {
		order := p.pending
		if !p.hasPending {
			order = p.implicitOrder(p.prev, idx)
		}
		p.bonds = append(p.bonds, Bond{Begin: p.prev, End: idx, Order: order})
	}
	p.prev = idx
	p.hasPending = false
	return nil
}

func (p *smilesParser) implicitOrder(a, b int) BondOrder {
	if p.atoms[a].Aromatic && p.atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *smilesParser) ringClosure() error {
	if p.prev < 0 {
		return p.fail("ring closure without a preceding atom")
	}
	num := 0
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.fail("malformed %nn ring closure")
		}
		num = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		num = int(p.src[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringBond{atom: p.prev, slot: len(p.written[p.prev]), order: p.pending, hasOrder: p.hasPending}
		p.written[p.prev] = append(p.written[p.prev], -2)
		p.hasPending = false
		return nil
	}
	delete(p.rings, num)

	if open.atom == p.prev {
		return p.fail("ring closure to the same atom")
	}
	for _, b := range p.bonds {
		if (b.Begin == open.atom && b.End == p.prev) || (b.End == open.atom && b.Begin == p.prev) {
			return p.fail("duplicate bond")
		}
	}
	var order BondOrder
	switch {
	case open.hasOrder && p.hasPending && open.order != p.pending:
		return p.fail("conflicting ring closure bond orders")
	case open.hasOrder:
		order = open.order
	case p.hasPending:
		order = p.pending
	default:
		order = p.implicitOrder(open.atom, p.prev)
	}
	p.bonds = append(p.bonds, Bond{Begin: open.atom, End: p.prev, Order: order})
	p.written[open.atom][open.slot] = p.prev
	p.written[p.prev] = append(p.written[p.prev], open.atom)
	p.hasPending = false
	return nil
}

func (p *smilesParser) organicAtom() error {
	c := p.src[p.pos]
	var a Atom
	switch c {
	case '*':
		p.pos++
		return p.addAtom(a)
	case 'B':
		if p.pos+1 < len(p.src) && p.src[p.pos+1] == 'r' {
			a.Number = numBr
			p.pos += 2
			return p.addAtom(a)
		}
		a.Number = numB
	case 'C':
		if p.pos+1 < len(p.src) && p.src[p.pos+1] == 'l' {
			a.Number = numCl
			p.pos += 2
			return p.addAtom(a)
		}
		a.Number = numC
	case 'N':
		a.Number = numN
	case 'O':
		a.Number = numO
	case 'P':
		a.Number = numP
	case 'S':
		a.Number = numS
	case 'F':
		a.Number = numF
	case 'I':
		a.Number = numI
	case 'b', 'c', 'n', 'o', 'p', 's':
		n, _ := lookupElement(strings.ToUpper(string(c)))
		a.Number = n
		a.Aromatic = true
	default:
		return p.fail(fmt.Sprintf("unexpected character %q", c))
	}
	p.pos++
	return p.addAtom(a)
}

func (p *smilesParser) bracketAtom() error {
	p.pos++ // '['
	a := Atom{Bracket: true}

	a.Isotope = p.readNumber()

	if p.pos >= len(p.src) {
		return p.fail("unterminated bracket atom")
	}
	switch {
	case p.src[p.pos] == '*':
		p.pos++
	case strings.HasPrefix(p.src[p.pos:], "se"), strings.HasPrefix(p.src[p.pos:], "as"), strings.HasPrefix(p.src[p.pos:], "te"):
		n, _ := lookupElement(strings.ToUpper(p.src[p.pos:p.pos+1]) + p.src[p.pos+1:p.pos+2])
		a.Number, a.Aromatic = n, true
		p.pos += 2
	case strings.ContainsRune("bcnops", rune(p.src[p.pos])):
		n, _ := lookupElement(strings.ToUpper(p.src[p.pos : p.pos+1]))
		a.Number, a.Aromatic = n, true
		p.pos++
	case p.src[p.pos] >= 'A' && p.src[p.pos] <= 'Z':
		if p.pos+1 < len(p.src) && p.src[p.pos+1] >= 'a' && p.src[p.pos+1] <= 'z' {
			if n, ok := lookupElement(p.src[p.pos : p.pos+2]); ok {
				a.Number = n
				p.pos += 2
				break
			}
		}
		n, ok := lookupElement(p.src[p.pos : p.pos+1])
		if !ok {
			return p.fail("unknown element")
		}
		a.Number = n
		p.pos++
	default:
		return p.fail("missing element symbol")
	}

	// Only tetrahedral descriptors are kept; @AL, @SP, @TB and @OH classes
	// are read and dropped.
	if p.pos < len(p.src) && p.src[p.pos] == '@' {
		p.pos++
		a.Chirality = ChiralCCW
		if p.pos < len(p.src) && p.src[p.pos] == '@' {
			p.pos++
			a.Chirality = ChiralCW
		}
		for _, tag := range []string{"TH", "AL", "SP", "TB", "OH"} {
			if strings.HasPrefix(p.src[p.pos:], tag) {
				p.pos += 2
				n := p.readNumber()
				switch {
				case tag == "TH" && n == 1:
					a.Chirality = ChiralCCW
				case tag == "TH" && n == 2:
					a.Chirality = ChiralCW
				default:
					a.Chirality = ChiralNone
				}
				break
			}
		}
	}

	if p.pos < len(p.src) && p.src[p.pos] == 'H' {
		p.pos++
		a.Hydrogens = 1
		if p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			a.Hydrogens = p.readNumber()
		}
	}

	if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
		sign := 1
		if p.src[p.pos] == '-' {
			sign = -1
		}
		sym := p.src[p.pos]
		p.pos++
		mag := 1
		if p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			mag = p.readNumber()
		} else {
			for p.pos < len(p.src) && p.src[p.pos] == sym {
				mag++
				p.pos++
			}
		}
		a.Charge = sign * mag
	}

	if p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
		if p.pos >= len(p.src) || !isDigit(p.src[p.pos]) {
			return p.fail("malformed atom class")
		}
		a.MapNum = p.readNumber()
	}

	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return p.fail("unterminated bracket atom")
	}
	p.pos++
	return p.addAtom(a)
}

func (p *smilesParser) readNumber() int {
	n := 0
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		n = n*10 + int(p.src[p.pos]-'0')
		p.pos++
	}
	return n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

//Personal.AI order the ending
