// Package artifacts loads the immutable model bundle: the feature layout,
// numeric scaler, fingerprint mask, trained regressor and the applicability
// reference corpus.
package artifacts

import (
	"encoding/json"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/ToxPredict/internal/domain/applicability"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// DefaultManifestName is the manifest object read when none is configured.
const DefaultManifestName = "manifest.json"

// Manifest is the on-disk description of a model bundle.
type Manifest struct {
	Version           string              `json:"version,omitempty" yaml:"version,omitempty"`
	TrainColumns      []string            `json:"train_columns" yaml:"train_columns"`
	FeatureNames      []string            `json:"feature_names" yaml:"feature_names"`
	NumIndices        []int               `json:"num_indices" yaml:"num_indices"`
	CategoricalFields []string            `json:"categorical_fields,omitempty" yaml:"categorical_fields,omitempty"`
	Scaler            ScalerSpec          `json:"scaler" yaml:"scaler"`
	FPMask            []bool              `json:"fp_mask" yaml:"fp_mask"`
	UniqueOptions     map[string][]string `json:"unique_options,omitempty" yaml:"unique_options,omitempty"`
	Applicability     ApplicabilitySpec   `json:"applicability" yaml:"applicability"`
	Model             ModelSpec           `json:"model" yaml:"model"`
}

// ScalerSpec holds fitted scaler parameters.  Exactly one of Mean, Center
// or Min is expected, matching Kind.
type ScalerSpec struct {
	Kind   string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Mean   []float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Center []float64 `json:"center,omitempty" yaml:"center,omitempty"`
	Min    []float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Scale  []float64 `json:"scale" yaml:"scale"`
}

// Offset returns whichever offset vector is populated.
func (s ScalerSpec) Offset() []float64 {
	switch {
	case len(s.Mean) > 0:
		return s.Mean
	case len(s.Center) > 0:
		return s.Center
	}
	return s.Min
}

// ApplicabilitySpec is the reference corpus part of the manifest.
// TrainFingerprints are 167-character '0'/'1' strings; TrainSMILES are
// standardized and fingerprinted at load time.
type ApplicabilitySpec struct {
	// Threshold defaults to applicability.DefaultThreshold when absent.
	Threshold         *float64                 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Ranges            []applicability.Range    `json:"ranges" yaml:"ranges"`
	Categories        []applicability.Category `json:"categories" yaml:"categories"`
	TrainFingerprints []string                 `json:"train_fingerprints,omitempty" yaml:"train_fingerprints,omitempty"`
	TrainSMILES       []string                 `json:"train_smiles,omitempty" yaml:"train_smiles,omitempty"`
}

// ModelSpec locates the trained regressor relative to the manifest.
type ModelSpec struct {
	Format string `json:"format" yaml:"format"`
	Path   string `json:"path" yaml:"path"`
}

// DecodeManifest parses data as YAML when name ends in .yaml or .yml and as
// JSON otherwise.
func DecodeManifest(name string, data []byte) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBundleInvalid, "decode yaml manifest")
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBundleInvalid, "decode json manifest")
		}
	}
	return &m, nil
}

// Encode renders the manifest in the format implied by name.
func (m *Manifest) Encode(name string) ([]byte, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return yaml.Marshal(m)
	}
	return json.MarshalIndent(m, "", "  ")
}

//Personal.AI order the ending
