// Package regressor evaluates gradient-boosted tree ensembles saved in the
// XGBoost JSON model format.
package regressor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

// FormatXGBoostJSON is the manifest name of the supported model format.
const FormatXGBoostJSON = "xgboost-json"

// Objective output transforms.
const (
	linkIdentity = iota
	linkSigmoid
	linkExp
)

// ─────────────────────────────────────────────────────────────────────────────
// Wire format
// ─────────────────────────────────────────────────────────────────────────────

type modelDoc struct {
	Learner struct {
		Attributes        map[string]string `json:"attributes"`
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
			NumTarget  string `json:"num_target"`
			NumClass   string `json:"num_class"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
		GradientBooster json.RawMessage `json:"gradient_booster"`
	} `json:"learner"`
}

type boosterDoc struct {
	Name       string          `json:"name"`
	Model      *gbtreeModelDoc `json:"model"`
	GBTree     *boosterDoc     `json:"gbtree"`
	WeightDrop []float64       `json:"weight_drop"`
}

type gbtreeModelDoc struct {
	Param struct {
		NumParallelTree string `json:"num_parallel_tree"`
	} `json:"gbtree_model_param"`
	Trees    []treeDoc `json:"trees"`
	TreeInfo []int     `json:"tree_info"`
}

type treeDoc struct {
	LeftChildren    []int           `json:"left_children"`
	RightChildren   []int           `json:"right_children"`
	SplitIndices    []int           `json:"split_indices"`
	SplitConditions []float64       `json:"split_conditions"`
	DefaultLeft     json.RawMessage `json:"default_left"`
	SplitType       []int           `json:"split_type"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Model
// ─────────────────────────────────────────────────────────────────────────────

type tree struct {
	left, right []int32
	feature     []int32
	cond        []float32
	defaultLeft []bool
}

// Model is an immutable tree ensemble.  Predict is safe for concurrent use.
type Model struct {
	objective  string
	link       int
	baseMargin float32
	numFeature int
	trees      []tree
	weights    []float32
}

// Load decodes an XGBoost JSON model.
func Load(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "read model")
	}
	return Decode(data)
}

// Decode parses an XGBoost JSON model document.
func Decode(data []byte) (*Model, error) {
	var doc modelDoc
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "decode xgboost model")
	}
	lp := doc.Learner.LearnerModelParam

	if n, _ := strconv.Atoi(lp.NumClass); n > 1 {
		return nil, errors.Newf(errors.ErrCodeAIModelVersionMismatch, "multi-class models are not supported (num_class=%d)", n)
	}
	if n, _ := strconv.Atoi(lp.NumTarget); n > 1 {
		return nil, errors.Newf(errors.ErrCodeAIModelVersionMismatch, "multi-target models are not supported (num_target=%d)", n)
	}

	m := &Model{objective: doc.Learner.Objective.Name}
	if m.objective == "" {
		m.objective = "reg:squarederror"
	}
	m.link = linkFor(m.objective)

	if lp.NumFeature != "" {
		n, err := strconv.Atoi(lp.NumFeature)
		if err != nil || n < 0 {
			return nil, errors.Newf(errors.ErrCodeAIModelNotAvailable, "invalid num_feature %q", lp.NumFeature)
		}
		m.numFeature = n
	}

	base, err := parseBaseScore(lp.BaseScore)
	if err != nil {
		return nil, err
	}
	m.baseMargin = float32(baseMargin(m.link, base))

	if len(doc.Learner.GradientBooster) == 0 {
		return nil, errors.New(errors.ErrCodeAIModelNotAvailable, "model has no gradient_booster")
	}
	var booster boosterDoc
	if err := json.Unmarshal(doc.Learner.GradientBooster, &booster); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "decode gradient_booster")
	}
	trees, weights, parallel, err := flattenBooster(&booster)
	if err != nil {
		return nil, err
	}

	limit := len(trees)
	if bi, ok := doc.Learner.Attributes["best_iteration"]; ok {
		if it, err := strconv.Atoi(bi); err == nil && it >= 0 {
			if n := (it + 1) * parallel; n < limit {
				limit = n
			}
		}
	}

	for i := 0; i < limit; i++ {
		t, err := m.buildTree(i, trees[i])
		if err != nil {
			return nil, err
		}
		m.trees = append(m.trees, t)
		w := float32(1)
		if weights != nil {
			w = float32(weights[i])
		}
		m.weights = append(m.weights, w)
	}
	return m, nil
}

func flattenBooster(b *boosterDoc) ([]treeDoc, []float64, int, error) {
	switch b.Name {
	case "gbtree", "":
		if b.Model == nil {
			return nil, nil, 0, errors.New(errors.ErrCodeAIModelNotAvailable, "gbtree has no model")
		}
		for _, g := range b.Model.TreeInfo {
			if g != 0 {
				return nil, nil, 0, errors.New(errors.ErrCodeAIModelVersionMismatch, "multi-group tree ensembles are not supported")
			}
		}
		parallel := 1
		if p, err := strconv.Atoi(b.Model.Param.NumParallelTree); err == nil && p > 0 {
			parallel = p
		}
		return b.Model.Trees, nil, parallel, nil
	case "dart":
		if b.GBTree == nil {
			return nil, nil, 0, errors.New(errors.ErrCodeAIModelNotAvailable, "dart booster has no gbtree")
		}
		trees, _, parallel, err := flattenBooster(b.GBTree)
		if err != nil {
			return nil, nil, 0, err
		}
		if len(b.WeightDrop) != len(trees) {
			return nil, nil, 0, errors.Newf(errors.ErrCodeAIModelNotAvailable,
				"dart has %d weights for %d trees", len(b.WeightDrop), len(trees))
		}
		return trees, b.WeightDrop, parallel, nil
	}
	return nil, nil, 0, errors.Newf(errors.ErrCodeAIModelVersionMismatch, "unsupported booster %q", b.Name)
}

func (m *Model) buildTree(idx int, d treeDoc) (tree, error) {
	bad := func(format string, args ...interface{}) (tree, error) {
		return tree{}, errors.Newf(errors.ErrCodeAIModelNotAvailable, "tree %d: "+format, append([]interface{}{idx}, args...)...)
	}
	n := len(d.LeftChildren)
	if n == 0 {
		return bad("no nodes")
	}
	if len(d.RightChildren) != n || len(d.SplitIndices) != n || len(d.SplitConditions) != n {
		return bad("node arrays have inconsistent lengths")
	}
	for _, st := range d.SplitType {
		if st != 0 {
			return bad("categorical splits are not supported")
		}
	}
	defLeft, err := decodeFlags(d.DefaultLeft, n)
	if err != nil {
		return bad("default_left: %v", err)
	}

	t := tree{
		left:        make([]int32, n),
		right:       make([]int32, n),
		feature:     make([]int32, n),
		cond:        make([]float32, n),
		defaultLeft: defLeft,
	}
	for i := 0; i < n; i++ {
		l, r := d.LeftChildren[i], d.RightChildren[i]
		if l == -1 {
			if r != -1 {
				return bad("node %d has only one child", i)
			}
		} else {
			if l <= i || l >= n || r <= i || r >= n {
				return bad("node %d has invalid children (%d, %d)", i, l, r)
			}
			f := d.SplitIndices[i]
			if f < 0 || (m.numFeature > 0 && f >= m.numFeature) {
				return bad("node %d splits on feature %d", i, f)
			}
		}
		t.left[i], t.right[i] = int32(l), int32(r)
		t.feature[i] = int32(d.SplitIndices[i])
		t.cond[i] = float32(d.SplitConditions[i])
	}
	return t, nil
}

// decodeFlags accepts default_left as either booleans or 0/1 integers.
func decodeFlags(raw json.RawMessage, n int) ([]bool, error) {
	out := make([]bool, n)
	if len(raw) == 0 {
		return out, nil
	}
	var asBool []bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		if len(asBool) != n {
			return nil, fmt.Errorf("expected %d entries, got %d", n, len(asBool))
		}
		return asBool, nil
	}
	var asInt []int
	if err := json.Unmarshal(raw, &asInt); err != nil {
		return nil, err
	}
	if len(asInt) != n {
		return nil, fmt.Errorf("expected %d entries, got %d", n, len(asInt))
	}
	for i, v := range asInt {
		out[i] = v != 0
	}
	return out, nil
}

func parseBaseScore(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return 0.5, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "invalid base_score")
	}
	return f, nil
}

func linkFor(objective string) int {
	switch objective {
	case "reg:logistic", "binary:logistic":
		return linkSigmoid
	case "count:poisson", "reg:gamma", "reg:tweedie":
		return linkExp
	}
	return linkIdentity
}

func baseMargin(link int, base float64) float64 {
	switch link {
	case linkSigmoid:
		return -math.Log(1/base - 1)
	case linkExp:
		return math.Log(base)
	}
	return base
}

// ─────────────────────────────────────────────────────────────────────────────
// Inference
// ─────────────────────────────────────────────────────────────────────────────

// Objective returns the training objective name.
func (m *Model) Objective() string { return m.objective }

// NumFeatures returns the input width recorded in the model, or 0 if the
// model does not declare one.
func (m *Model) NumFeatures() int { return m.numFeature }

// NumTrees returns the number of trees used for prediction.
func (m *Model) NumTrees() int { return len(m.trees) }

// Predict evaluates the ensemble on x.  NaN entries are treated as missing
// and follow each split's default direction.
func (m *Model) Predict(x []float64) (float64, error) {
	if m.numFeature > 0 && len(x) != m.numFeature {
		return 0, errors.Newf(errors.ErrCodeAIInputInvalid, "model expects %d features, got %d", m.numFeature, len(x))
	}
	margin := m.baseMargin
	for i := range m.trees {
		leaf, err := m.trees[i].eval(x)
		if err != nil {
			return 0, err
		}
		margin += m.weights[i] * leaf
	}
	switch m.link {
	case linkSigmoid:
		return 1 / (1 + math.Exp(-float64(margin))), nil
	case linkExp:
		return math.Exp(float64(margin)), nil
	}
	return float64(margin), nil
}

func (t *tree) eval(x []float64) (float32, error) {
	node := int32(0)
	for t.left[node] != -1 {
		f := t.feature[node]
		if int(f) >= len(x) {
			return 0, errors.Newf(errors.ErrCodeAIInputInvalid, "split on feature %d beyond input of length %d", f, len(x))
		}
		v := x[f]
		switch {
		case math.IsNaN(v):
			if t.defaultLeft[node] {
				node = t.left[node]
			} else {
				node = t.right[node]
			}
		case float32(v) < t.cond[node]:
			node = t.left[node]
		default:
			node = t.right[node]
		}
	}
	return t.cond[node], nil
}

//Personal.AI order the ending
