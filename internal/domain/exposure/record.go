// Package exposure models the experimental metadata that accompanies a
// structure: temperature, light intensity, exposure time, PFAS concentration,
// species and habitat.  Field names match the training data columns.
package exposure

import (
	stderrors "errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

// Training-data field names.
const (
	FieldTemperature   = "temperature"
	FieldLight         = "Light intensity(lux)"
	FieldExposureTime  = "Exposure time (d)"
	FieldConcentration = "PFAS concentration (μg/L)"
	FieldSpecies       = "Species"
	FieldHabitat       = "Habitat"
)

// Input keys accepted at the service boundary (HTML form and JSON API).
const (
	KeySMILES        = "smiles"
	KeyTemperature   = "temperature"
	KeyLight         = "light"
	KeyTime          = "time"
	KeyConcentration = "concentration"
	KeySpecies       = "species"
	KeyHabitat       = "habitat"
)

// Binding ties a boundary input key to a training-data field.
type Binding struct {
	Key     string
	Field   string
	Numeric bool
}

// Bindings lists every metadata input in boundary order.
var Bindings = []Binding{
	{Key: KeyTemperature, Field: FieldTemperature, Numeric: true},
	{Key: KeyLight, Field: FieldLight, Numeric: true},
	{Key: KeyTime, Field: FieldExposureTime, Numeric: true},
	{Key: KeyConcentration, Field: FieldConcentration, Numeric: true},
	{Key: KeySpecies, Field: FieldSpecies},
	{Key: KeyHabitat, Field: FieldHabitat},
}

// NumericFields returns the numeric field names in boundary order.
func NumericFields() []string {
	var out []string
	for _, b := range Bindings {
		if b.Numeric {
			out = append(out, b.Field)
		}
	}
	return out
}

// CategoricalFields returns the categorical field names in boundary order.
func CategoricalFields() []string {
	var out []string
	for _, b := range Bindings {
		if !b.Numeric {
			out = append(out, b.Field)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Record
// ─────────────────────────────────────────────────────────────────────────────

// Record maps field names to values.  Numeric fields hold float64 once built
// by Build; categorical fields hold strings.  A nil value counts as absent.
type Record map[string]any

// Value returns the value stored for field and whether it is present.
func (r Record) Value(field string) (any, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Number coerces the value of field to a float64.  present is false when the
// field is absent; err is non-nil when it is present but not numeric.
func (r Record) Number(field string) (value float64, present bool, err error) {
	v, ok := r.Value(field)
	if !ok {
		return 0, false, nil
	}
	f, err := ParseNumeric(v)
	return f, true, err
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Build converts raw boundary inputs, keyed by the Key* constants, into a
// Record.  Every numeric input must be present and coercible; the first
// failure is reported as an input error.  Categorical inputs are copied as
// given and left absent when missing.
func Build(inputs map[string]any) (Record, error) {
	rec := make(Record, len(Bindings))
	for _, b := range Bindings {
		raw, ok := inputs[b.Key]
		if !b.Numeric {
			if ok && raw != nil {
				rec[b.Field] = raw
			}
			continue
		}
		if !ok || raw == nil {
			return nil, errors.New(errors.ErrCodeInputInvalid, "Numerical fields error").
				WithDetail(fmt.Sprintf("%s is required", b.Key))
		}
		f, err := ParseNumeric(raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInputInvalid, "Numerical fields error")
		}
		rec[b.Field] = f
	}
	return rec, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Coercion and rendering
// ─────────────────────────────────────────────────────────────────────────────

// ParseNumeric coerces v to a float64.  Strings are trimmed and accept the
// forms strconv.ParseFloat does, including "nan" and "inf".  Booleans count
// as 1 and 0.
func ParseNumeric(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case interface{ Float64() (float64, error) }:
		return x.Float64()
	case string:
		s := strings.TrimSpace(x)
		f, err := strconv.ParseFloat(s, 64)
		var ne *strconv.NumError
		if err != nil && !(stderrors.As(err, &ne) && ne.Err == strconv.ErrRange) {
			return 0, fmt.Errorf("could not convert %q to a number", x)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	}
	return 0, fmt.Errorf("unsupported numeric type %T", v)
}

// FormatFloat renders f the way the model's training tooling prints floats:
// the shortest round-trip representation, a ".0" suffix on integral values
// and exponent notation outside [1e-4, 1e16).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatFixed2 renders f with two decimals.
func FormatFixed2(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Format renders an arbitrary record value as text.  Absent values render
// as "None".
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case float64:
		return FormatFloat(x)
	case float32:
		return FormatFloat(float64(x))
	case bool:
		if x {
			return "True"
		}
		return "False"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

//Personal.AI order the ending
