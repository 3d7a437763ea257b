package applicability

import (
	"fmt"
	"strings"

	"github.com/turtacn/ToxPredict/internal/domain/exposure"
	"github.com/turtacn/ToxPredict/internal/domain/molecule"
)

// Verdict reasons with fixed text.
const (
	ReasonPass            = "Pass"
	ReasonInvalidMolecule = "Invalid Molecule (SMILES Parse Error)"
)

// Verdict is the outcome of one applicability check.  Valid is true exactly
// when Reasons is empty, in which case Reason is ReasonPass.
type Verdict struct {
	Valid         bool
	Reason        string
	Reasons       []string
	MaxSimilarity float64
}

// Status renders the verdict as "Pass" or "Warning".
func (v Verdict) Status() string {
	if v.Valid {
		return ReasonPass
	}
	return "Warning"
}

// Validator evaluates candidates against a ReferenceCorpus.  It holds no
// mutable state and may be shared across goroutines.
type Validator struct {
	corpus *ReferenceCorpus
}

// NewValidator returns a validator over corpus.
func NewValidator(corpus *ReferenceCorpus) *Validator {
	return &Validator{corpus: corpus}
}

// Corpus returns the reference corpus.
func (v *Validator) Corpus() *ReferenceCorpus { return v.corpus }

// Evaluate fingerprints mol and checks it together with meta.  A nil
// molecule short-circuits with ReasonInvalidMolecule.
func (v *Validator) Evaluate(mol *molecule.Molecule, meta exposure.Record) Verdict {
	if mol == nil {
		return Verdict{Reason: ReasonInvalidMolecule, Reasons: []string{ReasonInvalidMolecule}}
	}
	return v.EvaluateFingerprint(molecule.EncodeMACCS(mol), meta)
}

// EvaluateFingerprint runs every check against an already computed
// fingerprint.  All violations are collected: structural similarity first,
// then numeric ranges and categorical sets in declared order.
func (v *Validator) EvaluateFingerprint(fp molecule.Fingerprint, meta exposure.Record) Verdict {
	c := v.corpus
	var reasons []string

	maxSim := c.MaxSimilarity(fp)
	if maxSim < c.threshold {
		reasons = append(reasons, fmt.Sprintf("Structure Dissimilar (Max Sim: %.3f < %s)",
			maxSim, exposure.FormatFloat(c.threshold)))
	}

	for _, r := range c.ranges {
		val, present, err := meta.Number(r.Field)
		switch {
		case !present:
		case err != nil:
			reasons = append(reasons, "Invalid number for "+r.Field)
		case !r.Contains(val):
			reasons = append(reasons, fmt.Sprintf("%s out of range (%s not in [%s, %s])",
				r.Field, exposure.FormatFloat(val), exposure.FormatFixed2(r.Min), exposure.FormatFixed2(r.Max)))
		}
	}

	for i, cat := range c.categories {
		raw, _ := meta.Value(cat.Field)
		if s, ok := raw.(string); ok {
			if _, allowed := c.allowed[i][s]; allowed {
				continue
			}
		}
		reasons = append(reasons, fmt.Sprintf("Invalid %s: '%s'", cat.Field, exposure.Format(raw)))
	}

	out := Verdict{Valid: len(reasons) == 0, Reasons: reasons, MaxSimilarity: maxSim}
	if out.Valid {
		out.Reason = ReasonPass
	} else {
		out.Reason = strings.Join(reasons, "; ")
	}
	return out
}

//Personal.AI order the ending
