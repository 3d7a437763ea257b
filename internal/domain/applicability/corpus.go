// Package applicability decides whether a structure and its exposure
// metadata lie inside the region the model was trained on.
package applicability

import (
	"fmt"
	"math"

	"github.com/turtacn/ToxPredict/internal/domain/molecule"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// DefaultThreshold is the minimum max-Tanimoto similarity to the training
// set below which a structure is reported as dissimilar.
const DefaultThreshold = 0.65

// Range is the inclusive interval learned for one numeric field.
type Range struct {
	Field string  `json:"field" yaml:"field"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Category is the set of values seen in training for one categorical field.
type Category struct {
	Field  string   `json:"field" yaml:"field"`
	Values []string `json:"values" yaml:"values"`
}

// ReferenceCorpus is the frozen training-set summary used by the validator.
// It is built once and never mutated, so any number of goroutines may read
// it concurrently.
type ReferenceCorpus struct {
	threshold    float64
	ranges       []Range
	categories   []Category
	allowed      []map[string]struct{}
	fingerprints []molecule.Fingerprint
}

// NewReferenceCorpus validates and freezes the given reference data.  The
// threshold lies in (0, 1], so a query against an empty corpus is always
// reported as dissimilar.  Ranges
// and categories keep their declared order, which is also the order in which
// their violations are reported.
func NewReferenceCorpus(threshold float64, ranges []Range, categories []Category, fps []molecule.Fingerprint) (*ReferenceCorpus, error) {
	if math.IsNaN(threshold) || threshold <= 0 || threshold > 1 {
		return nil, errors.Newf(errors.ErrCodeBundleInvalid, "similarity threshold %v is outside (0, 1]", threshold)
	}

	seen := make(map[string]struct{}, len(ranges)+len(categories))
	claim := func(kind, field string) error {
		if field == "" {
			return errors.Newf(errors.ErrCodeBundleInvalid, "%s with empty field name", kind)
		}
		if _, dup := seen[kind+"\x00"+field]; dup {
			return errors.Newf(errors.ErrCodeBundleInvalid, "duplicate %s for field %q", kind, field)
		}
		seen[kind+"\x00"+field] = struct{}{}
		return nil
	}

	c := &ReferenceCorpus{
		threshold:    threshold,
		ranges:       make([]Range, 0, len(ranges)),
		categories:   make([]Category, 0, len(categories)),
		allowed:      make([]map[string]struct{}, 0, len(categories)),
		fingerprints: append([]molecule.Fingerprint(nil), fps...),
	}
	for _, r := range ranges {
		if err := claim("range", r.Field); err != nil {
			return nil, err
		}
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min > r.Max {
			return nil, errors.Newf(errors.ErrCodeBundleInvalid, "invalid range for %q: [%v, %v]", r.Field, r.Min, r.Max)
		}
		c.ranges = append(c.ranges, r)
	}
	for _, cat := range categories {
		if err := claim("category", cat.Field); err != nil {
			return nil, err
		}
		set := make(map[string]struct{}, len(cat.Values))
		for _, v := range cat.Values {
			set[v] = struct{}{}
		}
		c.categories = append(c.categories, Category{Field: cat.Field, Values: append([]string(nil), cat.Values...)})
		c.allowed = append(c.allowed, set)
	}
	return c, nil
}

// Threshold returns the similarity threshold.
func (c *ReferenceCorpus) Threshold() float64 { return c.threshold }

// Len returns the number of training fingerprints.
func (c *ReferenceCorpus) Len() int { return len(c.fingerprints) }

// Ranges returns a copy of the numeric ranges in declared order.
func (c *ReferenceCorpus) Ranges() []Range {
	return append([]Range(nil), c.ranges...)
}

// Categories returns a copy of the categorical sets in declared order.
func (c *ReferenceCorpus) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{Field: cat.Field, Values: append([]string(nil), cat.Values...)}
	}
	return out
}

// AllowedValues returns the values accepted for field, or nil when the field
// has no learned set.
func (c *ReferenceCorpus) AllowedValues(field string) []string {
	for _, cat := range c.categories {
		if cat.Field == field {
			return append([]string(nil), cat.Values...)
		}
	}
	return nil
}

// MaxSimilarity returns the highest Tanimoto similarity between fp and the
// training fingerprints, or 0 for an empty corpus.
func (c *ReferenceCorpus) MaxSimilarity(fp molecule.Fingerprint) float64 {
	return molecule.MaxTanimoto(fp, c.fingerprints)
}

// WithFingerprint returns a copy of the corpus with fp appended to the
// training fingerprints.
func (c *ReferenceCorpus) WithFingerprint(fp molecule.Fingerprint) *ReferenceCorpus {
	out := *c
	out.fingerprints = append(append(make([]molecule.Fingerprint, 0, len(c.fingerprints)+1), c.fingerprints...), fp)
	return &out
}

func (c *ReferenceCorpus) String() string {
	return fmt.Sprintf("ReferenceCorpus{threshold=%v, ranges=%d, categories=%d, fingerprints=%d}",
		c.threshold, len(c.ranges), len(c.categories), len(c.fingerprints))
}

//Personal.AI order the ending
