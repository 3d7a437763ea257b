package features

import (
	"fmt"
	"math"
	"strings"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

// ScalerKind selects the affine transform a Scaler applies.
type ScalerKind string

const (
	// ScalerStandard computes (x - mean) / scale.
	ScalerStandard ScalerKind = "standard"
	// ScalerRobust computes (x - center) / scale.
	ScalerRobust ScalerKind = "robust"
	// ScalerMinMax computes x*scale + min.
	ScalerMinMax ScalerKind = "minmax"
)

// ParseScalerKind maps a manifest name onto a ScalerKind.  The empty string
// selects ScalerStandard.
func ParseScalerKind(s string) (ScalerKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "standardscaler":
		return ScalerStandard, nil
	case "robust", "robustscaler":
		return ScalerRobust, nil
	case "minmax", "minmaxscaler":
		return ScalerMinMax, nil
	}
	return "", errors.Newf(errors.ErrCodeBundleInvalid, "unknown scaler kind %q", s)
}

// Scaler is a fitted per-field affine transform.
type Scaler struct {
	kind   ScalerKind
	offset []float64
	scale  []float64
}

// NewScaler builds a scaler.  offset holds the mean, center or min depending
// on kind; both slices are indexed like the model's numeric feature names.
func NewScaler(kind ScalerKind, offset, scale []float64) (*Scaler, error) {
	if kind == "" {
		kind = ScalerStandard
	}
	switch kind {
	case ScalerStandard, ScalerRobust, ScalerMinMax:
	default:
		return nil, errors.Newf(errors.ErrCodeBundleInvalid, "unknown scaler kind %q", kind)
	}
	if len(offset) != len(scale) {
		return nil, errors.Newf(errors.ErrCodeBundleInvalid,
			"scaler offset has %d entries but scale has %d", len(offset), len(scale))
	}
	for i := range scale {
		if !finite(offset[i]) || !finite(scale[i]) {
			return nil, errors.Newf(errors.ErrCodeBundleInvalid, "scaler parameter %d is not finite", i)
		}
		if kind != ScalerMinMax && scale[i] == 0 {
			return nil, errors.Newf(errors.ErrCodeBundleInvalid, "scaler scale %d is zero", i)
		}
	}
	return &Scaler{
		kind:   kind,
		offset: append([]float64(nil), offset...),
		scale:  append([]float64(nil), scale...),
	}, nil
}

// Kind returns the transform kind.
func (s *Scaler) Kind() ScalerKind { return s.kind }

// Dim returns the number of fields the scaler was fitted on.
func (s *Scaler) Dim() int { return len(s.scale) }

// Transform scales x, which must have Dim entries.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.scale) {
		return nil, fmt.Errorf("scaler expects %d values, got %d", len(s.scale), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		if s.kind == ScalerMinMax {
			out[i] = v*s.scale[i] + s.offset[i]
		} else {
			out[i] = (v - s.offset[i]) / s.scale[i]
		}
	}
	return out, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

//Personal.AI order the ending
