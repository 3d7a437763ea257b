// Package features turns a standardized molecule and its exposure metadata
// into the fixed-length vector the regression model was trained on.
package features

import (
	"github.com/turtacn/ToxPredict/internal/domain/exposure"
	"github.com/turtacn/ToxPredict/internal/domain/molecule"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// Predictor is the trained regression model.
type Predictor interface {
	Predict(x []float64) (float64, error)
}

// FeatureCounter is implemented by predictors that know their input width.
type FeatureCounter interface {
	NumFeatures() int
}

// Config carries the raw contents of a model bundle before validation.
type Config struct {
	TrainColumns      []string
	FeatureNames      []string
	NumIndices        []int
	Scaler            *Scaler
	FPMask            [molecule.MACCSNumBits]bool
	CategoricalFields []string
	UniqueOptions     map[string][]string
	Predictor         Predictor
}

// ModelArtifacts is the validated, read-only model bundle.  Nothing writes
// to it after NewModelArtifacts returns.
type ModelArtifacts struct {
	trainColumns      []string
	columnIndex       map[string]int
	featureNames      []string
	numIndices        []int
	scaler            *Scaler
	fpMask            [molecule.MACCSNumBits]bool
	selectedBits      int
	categoricalFields []string
	uniqueOptions     map[string][]string
	predictor         Predictor
}

// NewModelArtifacts checks that the bundle is internally consistent: unique
// column names, aligned feature names and indices, a scaler fitted on the
// same fields and, when the predictor reports it, a matching input width.
func NewModelArtifacts(cfg Config) (*ModelArtifacts, error) {
	invalid := func(format string, args ...interface{}) error {
		return errors.Newf(errors.ErrCodeBundleInvalid, format, args...)
	}

	if len(cfg.TrainColumns) == 0 {
		return nil, invalid("train_columns is empty")
	}
	index := make(map[string]int, len(cfg.TrainColumns))
	for i, c := range cfg.TrainColumns {
		if c == "" {
			return nil, invalid("train_columns[%d] is empty", i)
		}
		if _, dup := index[c]; dup {
			return nil, invalid("duplicate train column %q", c)
		}
		index[c] = i
	}

	if len(cfg.FeatureNames) != len(cfg.NumIndices) {
		return nil, invalid("feature_names has %d entries but num_indices has %d",
			len(cfg.FeatureNames), len(cfg.NumIndices))
	}
	names := make(map[string]struct{}, len(cfg.FeatureNames))
	for _, n := range cfg.FeatureNames {
		if _, dup := names[n]; dup || n == "" {
			return nil, invalid("invalid or duplicate feature name %q", n)
		}
		names[n] = struct{}{}
	}
	used := make(map[int]struct{}, len(cfg.NumIndices))
	for _, idx := range cfg.NumIndices {
		if idx < 0 || idx >= len(cfg.TrainColumns) {
			return nil, invalid("num_indices entry %d outside [0, %d)", idx, len(cfg.TrainColumns))
		}
		if _, dup := used[idx]; dup {
			return nil, invalid("duplicate num_indices entry %d", idx)
		}
		used[idx] = struct{}{}
	}

	if cfg.Scaler == nil {
		return nil, invalid("scaler is missing")
	}
	if cfg.Scaler.Dim() != len(cfg.FeatureNames) {
		return nil, invalid("scaler fitted on %d fields but %d feature names given",
			cfg.Scaler.Dim(), len(cfg.FeatureNames))
	}
	if cfg.Predictor == nil {
		return nil, errors.New(errors.ErrCodeModelNotLoaded, "predictor is missing")
	}

	selected := 0
	for _, on := range cfg.FPMask {
		if on {
			selected++
		}
	}
	if fc, ok := cfg.Predictor.(FeatureCounter); ok {
		if n := fc.NumFeatures(); n > 0 && n != len(cfg.TrainColumns)+selected {
			return nil, invalid("model expects %d features but bundle assembles %d",
				n, len(cfg.TrainColumns)+selected)
		}
	}

	categorical := cfg.CategoricalFields
	if len(categorical) == 0 {
		categorical = exposure.CategoricalFields()
	}

	return &ModelArtifacts{
		trainColumns:      append([]string(nil), cfg.TrainColumns...),
		columnIndex:       index,
		featureNames:      append([]string(nil), cfg.FeatureNames...),
		numIndices:        append([]int(nil), cfg.NumIndices...),
		scaler:            cfg.Scaler,
		fpMask:            cfg.FPMask,
		selectedBits:      selected,
		categoricalFields: append([]string(nil), categorical...),
		uniqueOptions:     copyOptions(cfg.UniqueOptions),
		predictor:         cfg.Predictor,
	}, nil
}

// Dim is the length of every assembled vector.
func (a *ModelArtifacts) Dim() int { return len(a.trainColumns) + a.selectedBits }

// NumSelectedBits is the number of fingerprint bits fed to the model.
func (a *ModelArtifacts) NumSelectedBits() int { return a.selectedBits }

// TrainColumns returns a copy of the metadata column layout.
func (a *ModelArtifacts) TrainColumns() []string { return append([]string(nil), a.trainColumns...) }

// FeatureNames returns a copy of the numeric field names in scaler order.
func (a *ModelArtifacts) FeatureNames() []string { return append([]string(nil), a.featureNames...) }

// NumIndices returns a copy of the numeric column positions.
func (a *ModelArtifacts) NumIndices() []int { return append([]int(nil), a.numIndices...) }

// CategoricalFields returns the one-hot encoded field names.
func (a *ModelArtifacts) CategoricalFields() []string {
	return append([]string(nil), a.categoricalFields...)
}

// FPMask returns the fingerprint selection mask.
func (a *ModelArtifacts) FPMask() [molecule.MACCSNumBits]bool { return a.fpMask }

// Scaler returns the fitted numeric scaler.
func (a *ModelArtifacts) Scaler() *Scaler { return a.scaler }

// Predictor returns the trained model.
func (a *ModelArtifacts) Predictor() Predictor { return a.predictor }

// UniqueOptions returns the categorical values offered to users, keyed by
// field.  Species and Habitat are always present, possibly empty.
func (a *ModelArtifacts) UniqueOptions() map[string][]string {
	out := copyOptions(a.uniqueOptions)
	for _, f := range []string{exposure.FieldSpecies, exposure.FieldHabitat} {
		if _, ok := out[f]; !ok {
			out[f] = []string{}
		}
	}
	return out
}

func copyOptions(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string{}, v...)
	}
	return out
}

//Personal.AI order the ending
