package client

import (
	"context"
	"strings"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

// PredictionsClient covers the prediction endpoints.
type PredictionsClient struct {
	client *Client
}

// PredictionRequest is one structure plus its exposure scenario.
type PredictionRequest struct {
	SMILES        string  `json:"smiles"`
	Temperature   float64 `json:"temperature"`
	Light         float64 `json:"light"`
	Time          float64 `json:"time"`
	Concentration float64 `json:"concentration"`
	Species       string  `json:"species,omitempty"`
	Habitat       string  `json:"habitat,omitempty"`
}

// Prediction is the server's answer.  ADStatus is "Pass" or "Warning";
// ADMessage lists the reasons joined by "; ".
type Prediction struct {
	Prediction         float64 `json:"prediction"`
	ADStatus           string  `json:"ad_status"`
	ADMessage          string  `json:"ad_message"`
	Similarity         float64 `json:"similarity"`
	StandardizedSMILES string  `json:"standardized_smiles"`
}

// InDomain reports whether the applicability check passed.
func (p *Prediction) InDomain() bool {
	return p.ADStatus == "Pass"
}

// Reasons splits ADMessage into individual warnings.
func (p *Prediction) Reasons() []string {
	if p.InDomain() || p.ADMessage == "" {
		return nil
	}
	return strings.Split(p.ADMessage, "; ")
}

// BundleInfo describes the artifact bundle the server is using.
type BundleInfo struct {
	Version    string  `json:"version"`
	Source     string  `json:"source"`
	Features   int     `json:"features"`
	CorpusSize int     `json:"corpus_size"`
	Threshold  float64 `json:"threshold"`
	ModelTrees int     `json:"model_trees"`
	LoadedAt   string  `json:"loaded_at"`
}

// Predict calls POST /api/v1/predictions.
func (p *PredictionsClient) Predict(ctx context.Context, req *PredictionRequest) (*Prediction, error) {
	if req == nil || strings.TrimSpace(req.SMILES) == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "smiles is required")
	}
	var out Prediction
	if err := p.client.post(ctx, "/api/v1/predictions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Options calls GET /api/v1/options and returns the accepted categorical
// values keyed by training column.
func (p *PredictionsClient) Options(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string)
	if err := p.client.get(ctx, "/api/v1/options", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bundle calls GET /api/v1/bundle.
func (p *PredictionsClient) Bundle(ctx context.Context) (*BundleInfo, error) {
	var out BundleInfo
	if err := p.client.get(ctx, "/api/v1/bundle", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
