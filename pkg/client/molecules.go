package client

import (
	"context"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

// MoleculesClient covers the structure utility endpoints.
type MoleculesClient struct {
	client *Client
}

type Structure struct {
	InputSMILES        string `json:"input_smiles"`
	StandardizedSMILES string `json:"standardized_smiles"`
	Formula            string `json:"formula"`
	HeavyAtoms         int    `json:"heavy_atoms"`
	AromaticRings      int    `json:"aromatic_rings"`
}

// Fingerprint is a 167-bit MACCS key set.  Bits is a '0'/'1' string indexed
// by key number.
type Fingerprint struct {
	StandardizedSMILES string `json:"standardized_smiles"`
	Bits               string `json:"bits"`
	OnBits             []int  `json:"on_bits"`
	Count              int    `json:"count"`
}

type Similarity struct {
	Scores []float64 `json:"scores"`
	Max    float64   `json:"max"`
}

type smilesBody struct {
	SMILES string `json:"smiles"`
}

// Standardize calls POST /api/v1/molecules/standardize.
func (m *MoleculesClient) Standardize(ctx context.Context, smiles string) (*Structure, error) {
	var out Structure
	if err := m.client.post(ctx, "/api/v1/molecules/standardize", smilesBody{smiles}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fingerprint calls POST /api/v1/molecules/fingerprint.
func (m *MoleculesClient) Fingerprint(ctx context.Context, smiles string) (*Fingerprint, error) {
	var out Fingerprint
	if err := m.client.post(ctx, "/api/v1/molecules/fingerprint", smilesBody{smiles}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Similarity calls POST /api/v1/molecules/similarity.  Scores follow the
// order of references.
func (m *MoleculesClient) Similarity(ctx context.Context, query string, references ...string) (*Similarity, error) {
	if len(references) == 0 {
		return nil, errors.New(errors.ErrCodeBadRequest, "at least one reference is required")
	}
	body := struct {
		Query      string   `json:"query"`
		References []string `json:"references"`
	}{query, references}
	var out Similarity
	if err := m.client.post(ctx, "/api/v1/molecules/similarity", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
