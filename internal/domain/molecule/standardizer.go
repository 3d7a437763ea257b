package molecule

import (
	"errors"
	"fmt"

	apperrors "github.com/turtacn/ToxPredict/pkg/errors"
)

// DefaultMaxIterations bounds how often a single ionization rule is
// re-applied to the same molecule.
const DefaultMaxIterations = 10

// DefaultMaxSMILESLength caps the input accepted by StandardizeResult.
// Canonical ranking is quadratic in atom count, so oversized input is
// rejected before parsing.
const DefaultMaxSMILESLength = 1000

// ErrStandardizationFailed marks every failed standardization.  Callers
// treat all failures alike; Result.Err wraps it with the internal cause.
var ErrStandardizationFailed = errors.New("standardization failed")

// ─────────────────────────────────────────────────────────────────────────────
// Ionization rules
// ─────────────────────────────────────────────────────────────────────────────

// IonizationRule deprotonates the atom carrying a given map number in a
// SMARTS pattern: the atom becomes a -1 anion with one hydrogen fewer.
type IonizationRule struct {
	Name    string
	pattern *Pattern
	target  int
}

// NewIonizationRule compiles a rule.  targetMap is the atom map number of the
// atom to deprotonate.
func NewIonizationRule(name, smarts string, targetMap int) (IonizationRule, error) {
	p, err := CompileSMARTS(smarts)
	if err != nil {
		return IonizationRule{}, apperrors.Wrap(err, apperrors.ErrCodeSMARTSInvalid, "rule "+name)
	}
	target := p.MappedAtom(targetMap)
	if target < 0 {
		return IonizationRule{}, apperrors.Newf(apperrors.ErrCodeSMARTSInvalid,
			"rule %s: no atom with map number %d in %q", name, targetMap, smarts)
	}
	return IonizationRule{Name: name, pattern: p, target: target}, nil
}

func mustRule(name, smarts string, targetMap int) IonizationRule {
	r, err := NewIonizationRule(name, smarts, targetMap)
	if err != nil {
		panic(err)
	}
	return r
}

// Pattern returns the SMARTS the rule matches.
func (r IonizationRule) Pattern() string { return r.pattern.String() }

// DefaultIonizationRules are applied in order: carboxylic acids, sulfonic
// acids, then sulfonamide nitrogens bearing a fluorinated carbon on sulfur.
var DefaultIonizationRules = []IonizationRule{
	mustRule("carboxylic_acid", "[CX3:1](=[O:2])[OX2H1:3]", 3),
	mustRule("sulfonic_acid", "[SD4:1](=[O:2])(=[O:3])[OX2H1:4]", 4),
	mustRule("perfluoro_sulfonamide", "[N!H0+0;$(N-S(=O)(=O)C(F)(F)):1]", 1),
}

// apply deprotonates the target atom of match on a copy of m.
func (r IonizationRule) apply(m *Molecule, match []int) (*Molecule, error) {
	out := m.clone()
	atom := match[r.target]
	if out.atoms[atom].Hydrogens == 0 {
		return nil, fmt.Errorf("rule %s: atom %d has no implicit hydrogen to remove", r.Name, atom)
	}
	out.atoms[atom].Charge = -1
	out.atoms[atom].Hydrogens--
	out.atoms[atom].Chirality = ChiralNone
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Standardizer
// ─────────────────────────────────────────────────────────────────────────────

// Standardizer turns raw SMILES into the canonical active species: the
// largest fragment, sanitized, with acidic groups ionized.  It holds no
// mutable state and is safe for concurrent use.
type Standardizer struct {
	rules         []IonizationRule
	maxIterations int
	maxLength     int
}

// Option configures a Standardizer.
type Option func(*Standardizer)

// WithMaxIterations overrides the per-rule iteration bound.  Values below 1
// keep the default.
func WithMaxIterations(n int) Option {
	return func(s *Standardizer) {
		if n >= 1 {
			s.maxIterations = n
		}
	}
}

// WithMaxSMILESLength overrides the input length cap.  Values below 1 keep
// the default.
func WithMaxSMILESLength(n int) Option {
	return func(s *Standardizer) {
		if n >= 1 {
			s.maxLength = n
		}
	}
}

// WithRules replaces the ionization rule list.
func WithRules(rules ...IonizationRule) Option {
	return func(s *Standardizer) {
		s.rules = append([]IonizationRule(nil), rules...)
	}
}

// NewStandardizer builds a Standardizer with the default rules and bound.
func NewStandardizer(opts ...Option) *Standardizer {
	s := &Standardizer{
		rules:         DefaultIonizationRules,
		maxIterations: DefaultMaxIterations,
		maxLength:     DefaultMaxSMILESLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxIterations returns the configured per-rule bound.
func (s *Standardizer) MaxIterations() int { return s.maxIterations }

// MaxSMILESLength returns the longest input, in bytes, that is standardized.
func (s *Standardizer) MaxSMILESLength() int { return s.maxLength }

// Result is the outcome of a standardization: either a canonical molecule
// or a failure.
type Result struct {
	Molecule *Molecule
	SMILES   string
	// Err is nil on success.  On failure it wraps ErrStandardizationFailed.
	Err error
}

// OK reports whether standardization produced a molecule.
func (r Result) OK() bool { return r.Err == nil && r.Molecule != nil }

func failed(cause error) Result {
	return Result{Err: fmt.Errorf("%w: %v", ErrStandardizationFailed, cause)}
}

// Standardize returns the canonical molecule for raw, or nil when the input
// cannot be standardized.
func (s *Standardizer) Standardize(raw string) *Molecule {
	return s.StandardizeResult(raw).Molecule
}

// StandardizeResult runs the full pipeline and reports the outcome.  It
// never panics: any internal failure collapses to a failed Result.
func (s *Standardizer) StandardizeResult(raw string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(fmt.Errorf("panic: %v", r))
		}
	}()

	if len(raw) > s.maxLength {
		return failed(fmt.Errorf("input is %d bytes, limit is %d", len(raw), s.maxLength))
	}
	m, err := ParseSMILES(raw)
	if err != nil {
		return failed(err)
	}
	if m.NumFragments() > 1 {
		m = m.LargestFragment()
	}
	m, err = Sanitize(m)
	if err != nil {
		return failed(err)
	}

	current := m.CanonicalSMILES()
	for _, rule := range s.rules {
		m, current = s.applyToFixedPoint(rule, m, current)
	}
	return Result{Molecule: m, SMILES: current}
}

// applyToFixedPoint re-applies rule until no site matches, the canonical
// form stops changing, the rewritten molecule fails sanitization, or the
// iteration bound is reached.
func (s *Standardizer) applyToFixedPoint(rule IonizationRule, m *Molecule, smiles string) (*Molecule, string) {
	for step := 0; step < s.maxIterations; step++ {
		matches := rule.pattern.FindMatches(m, 1)
		if len(matches) == 0 {
			break
		}
		next, err := rule.apply(m, matches[0])
		if err != nil {
			break
		}
		next, err = Sanitize(next)
		if err != nil {
			break
		}
		nextSMILES := next.CanonicalSMILES()
		if nextSMILES == smiles {
			break
		}
		m, smiles = next, nextSMILES
	}
	return m, smiles
}

//Personal.AI order the ending
