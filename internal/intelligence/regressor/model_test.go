package regressor

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

const testTrees = `[
  {
    "left_children": [1, -1, -1],
    "right_children": [2, -1, -1],
    "split_indices": [0, 0, 0],
    "split_conditions": [1.0, 0.1, 0.2],
    "default_left": [1, 0, 0],
    "split_type": [0, 0, 0]
  },
  {
    "left_children": [1, -1, 3, -1, -1],
    "right_children": [2, -1, 4, -1, -1],
    "split_indices": [1, 0, 0, 0, 0],
    "split_conditions": [0.5, -0.05, 3.0, 0.3, 0.4],
    "default_left": [false, false, false, false, false]
  }
]`

func modelJSON(objective, baseScore, attributes, booster string) string {
	if booster == "" {
		booster = fmt.Sprintf(`{"name": "gbtree", "model": {"gbtree_model_param": {"num_parallel_tree": "1", "num_trees": "2"}, "trees": %s, "tree_info": [0, 0]}}`, testTrees)
	}
	if attributes == "" {
		attributes = "{}"
	}
	return fmt.Sprintf(`{
  "learner": {
    "attributes": %s,
    "learner_model_param": {"base_score": %q, "num_feature": "2", "num_target": "1", "num_class": "0"},
    "objective": {"name": %q},
    "gradient_booster": %s
  },
  "version": [2, 0, 3]
}`, attributes, baseScore, objective, booster)
}

func mustDecode(t *testing.T, doc string) *Model {
	t.Helper()
	m, err := Decode([]byte(doc))
	require.NoError(t, err)
	return m
}

func TestPredict_SquaredError(t *testing.T) {
	m := mustDecode(t, modelJSON("reg:squarederror", "5E-1", "", ""))
	assert.Equal(t, 2, m.NumFeatures())
	assert.Equal(t, 2, m.NumTrees())
	assert.Equal(t, "reg:squarederror", m.Objective())

	tests := []struct {
		x    []float64
		want float64
	}{
		{[]float64{0, 0}, 0.55},
		{[]float64{2, 1}, 1.0},
		{[]float64{5, 1}, 1.1},
		{[]float64{1, 0.5}, 1.0},
		{[]float64{math.NaN(), 0}, 0.55},
		{[]float64{2, math.NaN()}, 1.0},
	}
	for _, tt := range tests {
		got, err := m.Predict(tt.x)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-6, "x=%v", tt.x)
	}
}

func TestPredict_BracketedBaseScore(t *testing.T) {
	m := mustDecode(t, modelJSON("reg:squarederror", "[1.5E0]", "", ""))
	got, err := m.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.55, got, 1e-6)
}

func TestPredict_BestIteration(t *testing.T) {
	m := mustDecode(t, modelJSON("reg:squarederror", "0.5", `{"best_iteration": "0"}`, ""))
	assert.Equal(t, 1, m.NumTrees())
	got, err := m.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, got, 1e-6)
}

func TestPredict_Logistic(t *testing.T) {
	m := mustDecode(t, modelJSON("reg:logistic", "0.5", "", ""))
	got, err := m.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-0.05)), got, 1e-6)
}

func TestPredict_Poisson(t *testing.T) {
	m := mustDecode(t, modelJSON("count:poisson", "1", "", ""))
	got, err := m.Predict([]float64{2, 1})
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(0.5), got, 1e-6)
}

func TestPredict_Dart(t *testing.T) {
	booster := fmt.Sprintf(`{"name": "dart", "gbtree": {"name": "gbtree", "model": {"trees": %s, "tree_info": [0, 0]}}, "weight_drop": [1.0, 0.5]}`, testTrees)
	m := mustDecode(t, modelJSON("reg:squarederror", "0", "", booster))
	got, err := m.Predict([]float64{5, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.2+0.5*0.4, got, 1e-6)
}

func TestPredict_WrongWidth(t *testing.T) {
	m := mustDecode(t, modelJSON("reg:squarederror", "0.5", "", ""))
	_, err := m.Predict([]float64{1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAIInputInvalid))
}

func TestPredict_Concurrent(t *testing.T) {
	m := mustDecode(t, modelJSON("reg:squarederror", "0.5", "", ""))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := m.Predict([]float64{5, 1})
			assert.NoError(t, err)
			assert.InDelta(t, 1.1, got, 1e-6)
		}()
	}
	wg.Wait()
}

func TestLoad_Reader(t *testing.T) {
	m, err := Load(strings.NewReader(modelJSON("reg:squarederror", "0.5", "", "")))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumTrees())
}

func TestDecode_Invalid(t *testing.T) {
	tree := func(body string) string {
		return fmt.Sprintf(`{"name": "gbtree", "model": {"trees": [%s]}}`, body)
	}
	tests := []struct {
		name string
		doc  string
	}{
		{"not_json", "{"},
		{"no_booster", `{"learner": {"learner_model_param": {"base_score": "0.5"}}}`},
		{"bad_base_score", modelJSON("reg:squarederror", "abc", "", "")},
		{"multi_class", strings.Replace(modelJSON("multi:softprob", "0.5", "", ""), `"num_class": "0"`, `"num_class": "3"`, 1)},
		{"unknown_booster", modelJSON("reg:squarederror", "0.5", "", `{"name": "gblinear", "model": {}}`)},
		{"empty_tree", modelJSON("reg:squarederror", "0.5", "", tree(`{"left_children": [], "right_children": [], "split_indices": [], "split_conditions": []}`))},
		{"ragged_arrays", modelJSON("reg:squarederror", "0.5", "", tree(`{"left_children": [-1], "right_children": [-1, 2], "split_indices": [0], "split_conditions": [0]}`))},
		{"child_cycle", modelJSON("reg:squarederror", "0.5", "", tree(`{"left_children": [0, -1, -1], "right_children": [2, -1, -1], "split_indices": [0, 0, 0], "split_conditions": [0, 1, 2]}`))},
		{"half_leaf", modelJSON("reg:squarederror", "0.5", "", tree(`{"left_children": [-1], "right_children": [1], "split_indices": [0], "split_conditions": [0]}`))},
		{"feature_out_of_range", modelJSON("reg:squarederror", "0.5", "", tree(`{"left_children": [1, -1, -1], "right_children": [2, -1, -1], "split_indices": [5, 0, 0], "split_conditions": [0, 1, 2]}`))},
		{"categorical_split", modelJSON("reg:squarederror", "0.5", "", tree(`{"left_children": [-1], "right_children": [-1], "split_indices": [0], "split_conditions": [0], "split_type": [1]}`))},
		{"bad_default_left", modelJSON("reg:squarederror", "0.5", "", tree(`{"left_children": [-1], "right_children": [-1], "split_indices": [0], "split_conditions": [0], "default_left": [true, false]}`))},
		{"dart_weights", modelJSON("reg:squarederror", "0.5", "", fmt.Sprintf(`{"name": "dart", "gbtree": {"name": "gbtree", "model": {"trees": %s}}, "weight_drop": [1]}`, testTrees))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode([]byte(tt.doc))
			assert.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

//Personal.AI order the ending
