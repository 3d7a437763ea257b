package molecule

import (
	"fmt"
	"strings"
)

// Pattern is a compiled SMARTS query.  Patterns are immutable and safe for
// concurrent use.
type Pattern struct {
	src   string
	atoms []queryAtom
	bonds []queryBond
	adj   [][]edge
	// anchor[q] is a query bond joining atom q to a lower-numbered atom, or
	// -1 when q starts a new component.
	anchor []int
}

type queryAtom struct {
	expr   atomExpr
	mapNum int
}

type queryBond struct {
	begin int
	end   int
	expr  bondExpr
}

// String returns the SMARTS source the pattern was compiled from.
func (p *Pattern) String() string { return p.src }

// NumAtoms returns the number of query atoms.
func (p *Pattern) NumAtoms() int { return len(p.atoms) }

// MappedAtom returns the index of the query atom carrying the given atom
// map number, or -1.
func (p *Pattern) MappedAtom(mapNum int) int {
	for i, a := range p.atoms {
		if a.mapNum == mapNum {
			return i
		}
	}
	return -1
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom expressions
// ─────────────────────────────────────────────────────────────────────────────

type atomExpr interface {
	matchAtom(c *matchContext, i int) bool
}

type atomAnd struct{ l, r atomExpr }
type atomOr struct{ l, r atomExpr }
type atomNot struct{ x atomExpr }

func (e atomAnd) matchAtom(c *matchContext, i int) bool {
	return e.l.matchAtom(c, i) && e.r.matchAtom(c, i)
}

func (e atomOr) matchAtom(c *matchContext, i int) bool {
	return e.l.matchAtom(c, i) || e.r.matchAtom(c, i)
}

func (e atomNot) matchAtom(c *matchContext, i int) bool { return !e.x.matchAtom(c, i) }

type primKind uint8

const (
	primAny primKind = iota
	primAromatic
	primAliphatic
	primNumber
	primAliphaticElement
	primAromaticElement
	primHCount
	primDegree
	primConnectivity
	primRingCount
	primRingSize
	primCharge
	primIsotope
)

// anyRing is the primitive value for bare R and r: "in any ring".
const anyRing = -1

type atomPrim struct {
	kind primKind
	val  int
}

func (p atomPrim) matchAtom(c *matchContext, i int) bool {
	m := c.m
	a := m.atoms[i]
	switch p.kind {
	case primAny:
		return true
	case primAromatic:
		return a.Aromatic
	case primAliphatic:
		return !a.Aromatic
	case primNumber:
		return a.Number == p.val
	case primAliphaticElement:
		return a.Number == p.val && !a.Aromatic
	case primAromaticElement:
		return a.Number == p.val && a.Aromatic
	case primHCount:
		return m.TotalHydrogens(i) == p.val
	case primDegree:
		return len(m.adj[i]) == p.val
	case primConnectivity:
		return len(m.adj[i])+a.Hydrogens == p.val
	case primRingCount:
		if p.val == anyRing {
			return m.IsRingAtom(i)
		}
		return m.ringCount(i) == p.val
	case primRingSize:
		if p.val == anyRing {
			return m.IsRingAtom(i)
		}
		return m.smallestRingSize(i) == p.val
	case primCharge:
		return a.Charge == p.val
	case primIsotope:
		return a.Isotope == p.val
	}
	return false
}

type atomRecursive struct{ pat *Pattern }

func (e atomRecursive) matchAtom(c *matchContext, i int) bool {
	return c.recursiveMatch(e.pat, i)
}

// ─────────────────────────────────────────────────────────────────────────────
// Bond expressions
// ─────────────────────────────────────────────────────────────────────────────

type bondExpr interface {
	matchBond(m *Molecule, b int) bool
}

type bondAnd struct{ l, r bondExpr }
type bondOr struct{ l, r bondExpr }
type bondNot struct{ x bondExpr }

func (e bondAnd) matchBond(m *Molecule, b int) bool { return e.l.matchBond(m, b) && e.r.matchBond(m, b) }
func (e bondOr) matchBond(m *Molecule, b int) bool  { return e.l.matchBond(m, b) || e.r.matchBond(m, b) }
func (e bondNot) matchBond(m *Molecule, b int) bool { return !e.x.matchBond(m, b) }

type bondKind uint8

const (
	bondSingleQ bondKind = iota
	bondDoubleQ
	bondTripleQ
	bondAromaticQ
	bondAnyQ
	bondRingQ
	bondDefaultQ
)

type bondPrim struct{ kind bondKind }

func (p bondPrim) matchBond(m *Molecule, b int) bool {
	order := m.bonds[b].Order
	switch p.kind {
	case bondSingleQ:
		return order == BondSingle
	case bondDoubleQ:
		return order == BondDouble
	case bondTripleQ:
		return order == BondTriple
	case bondAromaticQ:
		return order == BondAromatic
	case bondAnyQ:
		return true
	case bondRingQ:
		return m.IsRingBond(b)
	case bondDefaultQ:
		return order == BondSingle || order == BondAromatic
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Compiler
// ─────────────────────────────────────────────────────────────────────────────

// CompileSMARTS compiles a SMARTS pattern.  The supported subset covers atom
// primitives *, a, A, #n, element symbols, H, D, X, R, r, charge, isotope and
// recursive $(...), bond primitives - = # : ~ @ / \, the logical operators
// ! & , ; and atom map numbers.  Stereo markers are accepted and ignored.
func CompileSMARTS(smarts string) (*Pattern, error) {
	c := &smartsCompiler{src: smarts, prev: -1, rings: make(map[int]openRing)}
	if err := c.compile(); err != nil {
		return nil, err
	}
	p := &Pattern{src: smarts, atoms: c.atoms, bonds: c.bonds, adj: make([][]edge, len(c.atoms)), anchor: make([]int, len(c.atoms))}
	for i, b := range c.bonds {
		p.adj[b.begin] = append(p.adj[b.begin], edge{atom: b.end, bond: i})
		p.adj[b.end] = append(p.adj[b.end], edge{atom: b.begin, bond: i})
	}
	for q := range p.atoms {
		p.anchor[q] = -1
		for _, e := range p.adj[q] {
			if e.atom < q {
				p.anchor[q] = e.bond
				break
			}
		}
	}
	return p, nil
}

// MustCompileSMARTS is CompileSMARTS for package-level pattern tables.
func MustCompileSMARTS(smarts string) *Pattern {
	p, err := CompileSMARTS(smarts)
	if err != nil {
		panic(err)
	}
	return p
}

type openRing struct {
	atom int
	expr bondExpr
}

type smartsCompiler struct {
	src      string
	pos      int
	atoms    []queryAtom
	bonds    []queryBond
	prev     int
	branches []int
	rings    map[int]openRing
	pending  bondExpr
}

func (c *smartsCompiler) fail(reason string) error {
	return fmt.Errorf("smarts: %s at position %d in %q", reason, c.pos, c.src)
}

func (c *smartsCompiler) peek() byte {
	if c.pos < len(c.src) {
		return c.src[c.pos]
	}
	return 0
}

func (c *smartsCompiler) compile() error {
	if c.src == "" {
		return c.fail("empty pattern")
	}
	for c.pos < len(c.src) {
		ch := c.src[c.pos]
		switch {
		case ch == '(':
			if c.prev < 0 {
				return c.fail("branch without a preceding atom")
			}
			c.branches = append(c.branches, c.prev)
			c.pos++
		case ch == ')':
			if len(c.branches) == 0 {
				return c.fail("unbalanced ')'")
			}
			c.prev = c.branches[len(c.branches)-1]
			c.branches = c.branches[:len(c.branches)-1]
			c.pos++
		case ch == '.':
			c.prev = -1
			c.pos++
		case strings.IndexByte("-=#:~@/\\!&,;", ch) >= 0:
			if c.pending != nil {
				return c.fail("consecutive bond expressions")
			}
			expr, err := c.bondExpression()
			if err != nil {
				return err
			}
			c.pending = expr
		case isDigit(ch) || ch == '%':
			if err := c.ringClosure(); err != nil {
				return err
			}
		case ch == '[':
			c.pos++
			expr, mapNum, err := c.bracketExpression()
			if err != nil {
				return err
			}
			c.addAtom(queryAtom{expr: expr, mapNum: mapNum})
		default:
			expr, err := c.bareAtom()
			if err != nil {
				return err
			}
			c.addAtom(queryAtom{expr: expr})
		}
	}
	if c.pending != nil {
		return c.fail("dangling bond")
	}
	if len(c.branches) > 0 {
		return c.fail("unclosed branch")
	}
	if len(c.rings) > 0 {
		return c.fail("unclosed ring")
	}
	return nil
}

func (c *smartsCompiler) addAtom(a queryAtom) {
	idx := len(c.atoms)
	c.atoms = append(c.atoms, a)
	if c.prev >= 0 {
		expr := c.pending
		if expr == nil {
			expr = bondPrim{kind: bondDefaultQ}
		}
		c.bonds = append(c.bonds, queryBond{begin: c.prev, end: idx, expr: expr})
	}
	c.pending = nil
	c.prev = idx
}

func (c *smartsCompiler) ringClosure() error {
	if c.prev < 0 {
		return c.fail("ring closure without a preceding atom")
	}
	var num int
	if c.src[c.pos] == '%' {
		if c.pos+2 >= len(c.src) || !isDigit(c.src[c.pos+1]) || !isDigit(c.src[c.pos+2]) {
			return c.fail("malformed %nn ring closure")
		}
		num = int(c.src[c.pos+1]-'0')*10 + int(c.src[c.pos+2]-'0')
		c.pos += 3
	} else {
		num = int(c.src[c.pos] - '0')
		c.pos++
	}
	open, ok := c.rings[num]
	if !ok {
		c.rings[num] = openRing{atom: c.prev, expr: c.pending}
		c.pending = nil
		return nil
	}
	delete(c.rings, num)
	expr := open.expr
	if expr == nil {
		expr = c.pending
	}
	if expr == nil {
		expr = bondPrim{kind: bondDefaultQ}
	}
	c.bonds = append(c.bonds, queryBond{begin: open.atom, end: c.prev, expr: expr})
	c.pending = nil
	return nil
}

func (c *smartsCompiler) bareAtom() (atomExpr, error) {
	ch := c.src[c.pos]
	switch ch {
	case '*':
		c.pos++
		return atomPrim{kind: primAny}, nil
	case 'a':
		c.pos++
		return atomPrim{kind: primAromatic}, nil
	case 'A':
		c.pos++
		return atomPrim{kind: primAliphatic}, nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		c.pos++
		n, _ := lookupElement(strings.ToUpper(string(ch)))
		return atomPrim{kind: primAromaticElement, val: n}, nil
	}
	for _, sym := range []string{"Cl", "Br", "B", "C", "N", "O", "P", "S", "F", "I"} {
		if strings.HasPrefix(c.src[c.pos:], sym) {
			c.pos += len(sym)
			n, _ := lookupElement(sym)
			return atomPrim{kind: primAliphaticElement, val: n}, nil
		}
	}
	return nil, c.fail(fmt.Sprintf("unexpected character %q", ch))
}

// bracketExpression parses the inside of [...] including the closing
// bracket and an optional trailing atom map.
func (c *smartsCompiler) bracketExpression() (atomExpr, int, error) {
	expr, err := c.atomLowAnd()
	if err != nil {
		return nil, 0, err
	}
	mapNum := 0
	if c.peek() == ':' {
		c.pos++
		if !isDigit(c.peek()) {
			return nil, 0, c.fail("malformed atom map")
		}
		mapNum = c.number()
	}
	if c.peek() != ']' {
		return nil, 0, c.fail("unterminated bracket atom")
	}
	c.pos++
	return expr, mapNum, nil
}

func (c *smartsCompiler) atomLowAnd() (atomExpr, error) {
	left, err := c.atomOr()
	if err != nil {
		return nil, err
	}
	for c.peek() == ';' {
		c.pos++
		right, err := c.atomOr()
		if err != nil {
			return nil, err
		}
		left = atomAnd{left, right}
	}
	return left, nil
}

func (c *smartsCompiler) atomOr() (atomExpr, error) {
	left, err := c.atomHighAnd()
	if err != nil {
		return nil, err
	}
	for c.peek() == ',' {
		c.pos++
		right, err := c.atomHighAnd()
		if err != nil {
			return nil, err
		}
		left = atomOr{left, right}
	}
	return left, nil
}

func (c *smartsCompiler) atomHighAnd() (atomExpr, error) {
	left, err := c.atomUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch c.peek() {
		case 0, ']', ';', ',', ':':
			return left, nil
		case '&':
			c.pos++
		}
		right, err := c.atomUnary()
		if err != nil {
			return nil, err
		}
		left = atomAnd{left, right}
	}
}

func (c *smartsCompiler) atomUnary() (atomExpr, error) {
	if c.peek() == '!' {
		c.pos++
		x, err := c.atomUnary()
		if err != nil {
			return nil, err
		}
		return atomNot{x}, nil
	}
	return c.atomPrimitive()
}

// optionalNumber reads a decimal number, returning def when none follows.
func (c *smartsCompiler) optionalNumber(def int) int {
	if !isDigit(c.peek()) {
		return def
	}
	return c.number()
}

func (c *smartsCompiler) number() int {
	n := 0
	for isDigit(c.peek()) {
		n = n*10 + int(c.src[c.pos]-'0')
		c.pos++
	}
	return n
}

func (c *smartsCompiler) atomPrimitive() (atomExpr, error) {
	if c.pos >= len(c.src) {
		return nil, c.fail("unterminated bracket atom")
	}
	ch := c.src[c.pos]
	rest := c.src[c.pos:]

	switch {
	case ch == '$':
		return c.recursive()
	case ch == '*':
		c.pos++
		return atomPrim{kind: primAny}, nil
	case ch == '#':
		c.pos++
		if !isDigit(c.peek()) {
			return nil, c.fail("'#' without atomic number")
		}
		return atomPrim{kind: primNumber, val: c.number()}, nil
	case isDigit(ch):
		return atomPrim{kind: primIsotope, val: c.number()}, nil
	case ch == '+' || ch == '-':
		return atomPrim{kind: primCharge, val: c.charge()}, nil
	case ch == '@':
		// Chirality is not perceived; treat it as always true.
		for c.peek() == '@' {
			c.pos++
		}
		return atomPrim{kind: primAny}, nil
	case strings.HasPrefix(rest, "se"), strings.HasPrefix(rest, "te"):
		n, _ := lookupElement(strings.ToUpper(rest[:1]) + rest[1:2])
		c.pos += 2
		return atomPrim{kind: primAromaticElement, val: n}, nil
	case ch >= 'A' && ch <= 'Z' && len(rest) > 1 && rest[1] >= 'a' && rest[1] <= 'z':
		if n, ok := lookupElement(rest[:2]); ok {
			c.pos += 2
			return atomPrim{kind: primAliphaticElement, val: n}, nil
		}
	}

	switch ch {
	case 'a':
		c.pos++
		return atomPrim{kind: primAromatic}, nil
	case 'A':
		c.pos++
		return atomPrim{kind: primAliphatic}, nil
	case 'H':
		c.pos++
		return atomPrim{kind: primHCount, val: c.optionalNumber(1)}, nil
	case 'D':
		c.pos++
		return atomPrim{kind: primDegree, val: c.optionalNumber(1)}, nil
	case 'X':
		c.pos++
		return atomPrim{kind: primConnectivity, val: c.optionalNumber(1)}, nil
	case 'R':
		c.pos++
		return atomPrim{kind: primRingCount, val: c.optionalNumber(anyRing)}, nil
	case 'r':
		c.pos++
		return atomPrim{kind: primRingSize, val: c.optionalNumber(anyRing)}, nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		c.pos++
		n, _ := lookupElement(strings.ToUpper(string(ch)))
		return atomPrim{kind: primAromaticElement, val: n}, nil
	}
	if ch >= 'A' && ch <= 'Z' {
		if n, ok := lookupElement(string(ch)); ok {
			c.pos++
			return atomPrim{kind: primAliphaticElement, val: n}, nil
		}
	}
	return nil, c.fail(fmt.Sprintf("unsupported atom primitive %q", ch))
}

func (c *smartsCompiler) charge() int {
	sym := c.src[c.pos]
	sign := 1
	if sym == '-' {
		sign = -1
	}
	c.pos++
	if isDigit(c.peek()) {
		return sign * c.number()
	}
	mag := 1
	for c.peek() == sym {
		mag++
		c.pos++
	}
	return sign * mag
}

func (c *smartsCompiler) recursive() (atomExpr, error) {
	if !strings.HasPrefix(c.src[c.pos:], "$(") {
		return nil, c.fail("malformed recursive SMARTS")
	}
	start := c.pos + 2
	depth := 1
	i := start
	for ; i < len(c.src) && depth > 0; i++ {
		switch c.src[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	if depth != 0 {
		return nil, c.fail("unterminated recursive SMARTS")
	}
	inner, err := CompileSMARTS(c.src[start : i-1])
	if err != nil {
		return nil, err
	}
	c.pos = i
	return atomRecursive{pat: inner}, nil
}

func (c *smartsCompiler) bondExpression() (bondExpr, error) {
	return c.bondLowAnd()
}

func (c *smartsCompiler) bondLowAnd() (bondExpr, error) {
	left, err := c.bondOr()
	if err != nil {
		return nil, err
	}
	for c.peek() == ';' {
		c.pos++
		right, err := c.bondOr()
		if err != nil {
			return nil, err
		}
		left = bondAnd{left, right}
	}
	return left, nil
}

func (c *smartsCompiler) bondOr() (bondExpr, error) {
	left, err := c.bondHighAnd()
	if err != nil {
		return nil, err
	}
	for c.peek() == ',' {
		c.pos++
		right, err := c.bondHighAnd()
		if err != nil {
			return nil, err
		}
		left = bondOr{left, right}
	}
	return left, nil
}

func (c *smartsCompiler) bondHighAnd() (bondExpr, error) {
	left, err := c.bondUnary()
	if err != nil {
		return nil, err
	}
	for {
		ch := c.peek()
		if ch == '&' {
			c.pos++
		} else if strings.IndexByte("-=#:~@/\\!", ch) < 0 || ch == 0 {
			return left, nil
		}
		right, err := c.bondUnary()
		if err != nil {
			return nil, err
		}
		left = bondAnd{left, right}
	}
}

func (c *smartsCompiler) bondUnary() (bondExpr, error) {
	if c.peek() == '!' {
		c.pos++
		x, err := c.bondUnary()
		if err != nil {
			return nil, err
		}
		return bondNot{x}, nil
	}
	var kind bondKind
	switch c.peek() {
	case '-', '/', '\\':
		kind = bondSingleQ
	case '=':
		kind = bondDoubleQ
	case '#':
		kind = bondTripleQ
	case ':':
		kind = bondAromaticQ
	case '~':
		kind = bondAnyQ
	case '@':
		kind = bondRingQ
	default:
		return nil, c.fail("expected bond primitive")
	}
	c.pos++
	return bondPrim{kind: kind}, nil
}

//Personal.AI order the ending
