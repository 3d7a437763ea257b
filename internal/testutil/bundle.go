package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Sample bundle constants.  The sample model predicts 1.5 or 2.5 depending
// on whether the scaled temperature is below zero (temperature < 20), plus
// 0.25 when the structure contains oxygen.
const (
	SamplePFOA       = "OC(=O)C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)F"
	SamplePFOS       = "OS(=O)(=O)C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)C(F)(F)F"
	SampleFeatureDim = 11
)

// SampleMaskBits are the fingerprint bits the sample bundle selects.
var SampleMaskBits = []int{42, 125, 164}

// SampleTrainColumns is the metadata layout of the sample bundle.
var SampleTrainColumns = []string{
	"temperature",
	"Light intensity(lux)",
	"Exposure time (d)",
	"PFAS concentration (μg/L)",
	"Species_Daphnia magna",
	"Species_Danio rerio",
	"Habitat_Freshwater",
	"Habitat_Marine",
}

// SampleManifest returns the manifest of the sample bundle as a generic map
// so tests can tweak fields before writing it.
func SampleManifest() map[string]any {
	mask := make([]bool, 167)
	for _, b := range SampleMaskBits {
		mask[b] = true
	}
	return map[string]any{
		"version":       "test-1",
		"train_columns": SampleTrainColumns,
		"feature_names": SampleTrainColumns[:4],
		"num_indices":   []int{0, 1, 2, 3},
		"scaler": map[string]any{
			"kind":  "standard",
			"mean":  []float64{20, 1000, 7, 10},
			"scale": []float64{5, 500, 2, 4},
		},
		"fp_mask": mask,
		"unique_options": map[string][]string{
			"Species": {"Daphnia magna", "Danio rerio"},
			"Habitat": {"Freshwater", "Marine"},
		},
		"applicability": map[string]any{
			"threshold": 0.65,
			"ranges": []map[string]any{
				{"field": "temperature", "min": 10, "max": 30},
				{"field": "Light intensity(lux)", "min": 0, "max": 5000},
				{"field": "Exposure time (d)", "min": 1, "max": 28},
				{"field": "PFAS concentration (μg/L)", "min": 0.01, "max": 1000},
			},
			"categories": []map[string]any{
				{"field": "Species", "values": []string{"Daphnia magna", "Danio rerio"}},
				{"field": "Habitat", "values": []string{"Freshwater", "Marine"}},
			},
			"train_smiles": []string{SamplePFOA, SamplePFOS, "C1CC"},
		},
		"model": map[string]any{"format": "xgboost-json", "path": "model.json"},
	}
}

// SampleModel is an XGBoost JSON model over SampleFeatureDim inputs.
const SampleModel = `{
  "learner": {
    "attributes": {},
    "learner_model_param": {"base_score": "0E0", "num_feature": "11", "num_target": "1", "num_class": "0"},
    "objective": {"name": "reg:squarederror"},
    "gradient_booster": {
      "name": "gbtree",
      "model": {
        "gbtree_model_param": {"num_parallel_tree": "1", "num_trees": "2"},
        "tree_info": [0, 0],
        "trees": [
          {"left_children": [1, -1, -1], "right_children": [2, -1, -1], "split_indices": [0, 0, 0],
           "split_conditions": [0.0, 1.5, 2.5], "default_left": [1, 0, 0]},
          {"left_children": [1, -1, -1], "right_children": [2, -1, -1], "split_indices": [10, 0, 0],
           "split_conditions": [0.5, 0.0, 0.25], "default_left": [1, 0, 0]}
        ]
      }
    }
  },
  "version": [2, 0, 3]
}`

// WriteBundle writes manifest (as manifest.json) and SampleModel into a new
// temporary directory and returns it.
func WriteBundle(t testing.TB, manifest map[string]any) string {
	t.Helper()
	dir := t.TempDir()
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "model.json"), []byte(SampleModel), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return dir
}

// WriteSampleBundle writes the unmodified sample bundle.
func WriteSampleBundle(t testing.TB) string {
	return WriteBundle(t, SampleManifest())
}

//Personal.AI order the ending
