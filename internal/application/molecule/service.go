// Package molecule provides the application-level service for structure
// operations that do not need a model bundle: standardization, MACCS
// fingerprinting and Tanimoto similarity.
package molecule

import (
	"context"

	domainMol "github.com/turtacn/ToxPredict/internal/domain/molecule"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// Service defines the interface for molecule application operations.
type Service interface {
	Standardize(ctx context.Context, smiles string) (*Structure, error)
	Fingerprint(ctx context.Context, smiles string) (*FingerprintResult, error)
	Similarity(ctx context.Context, input *SimilarityInput) (*SimilarityResult, error)
}

// Structure is a standardized molecule.
type Structure struct {
	InputSMILES        string `json:"input_smiles"`
	StandardizedSMILES string `json:"standardized_smiles"`
	Formula            string `json:"formula"`
	HeavyAtoms         int    `json:"heavy_atoms"`
	AromaticRings      int    `json:"aromatic_rings"`
}

// FingerprintResult is the MACCS fingerprint of a standardized molecule.
type FingerprintResult struct {
	StandardizedSMILES string `json:"standardized_smiles"`
	Bits               string `json:"bits"`
	OnBits             []int  `json:"on_bits"`
	Count              int    `json:"count"`
}

// SimilarityInput compares one query against references.
type SimilarityInput struct {
	Query      string
	References []string
}

// SimilarityResult holds one Tanimoto score per reference, in input order.
type SimilarityResult struct {
	Scores []float64 `json:"scores"`
	Max    float64   `json:"max"`
}

type serviceImpl struct {
	standardizer *domainMol.Standardizer
	logger       logging.Logger
}

// NewService creates a new molecule application service.
func NewService(standardizer *domainMol.Standardizer, logger logging.Logger) Service {
	if standardizer == nil {
		standardizer = domainMol.NewStandardizer()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{standardizer: standardizer, logger: logger}
}

func (s *serviceImpl) standardize(ctx context.Context, smiles string) (domainMol.Result, error) {
	if err := ctx.Err(); err != nil {
		return domainMol.Result{}, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled")
	}
	res := s.standardizer.StandardizeResult(smiles)
	if !res.OK() {
		s.logger.Debug("Standardization failed", logging.String("smiles", smiles), logging.Err(res.Err))
		return res, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "Invalid SMILES").WithDetail(smiles).WithCause(res.Err)
	}
	return res, nil
}

func (s *serviceImpl) Standardize(ctx context.Context, smiles string) (*Structure, error) {
	res, err := s.standardize(ctx, smiles)
	if err != nil {
		return nil, err
	}
	return &Structure{
		InputSMILES:        smiles,
		StandardizedSMILES: res.SMILES,
		Formula:            res.Molecule.Formula(),
		HeavyAtoms:         res.Molecule.HeavyAtomCount(),
		AromaticRings:      res.Molecule.NumAromaticRings(),
	}, nil
}

func (s *serviceImpl) Fingerprint(ctx context.Context, smiles string) (*FingerprintResult, error) {
	res, err := s.standardize(ctx, smiles)
	if err != nil {
		return nil, err
	}
	fp := domainMol.EncodeMACCS(res.Molecule)
	return &FingerprintResult{
		StandardizedSMILES: res.SMILES,
		Bits:               fp.String(),
		OnBits:             fp.OnBits(),
		Count:              fp.Count(),
	}, nil
}

// Similarity fails on the first reference that cannot be standardized.
func (s *serviceImpl) Similarity(ctx context.Context, input *SimilarityInput) (*SimilarityResult, error) {
	if input == nil || len(input.References) == 0 {
		return nil, errors.New(errors.ErrCodeBadRequest, "at least one reference is required")
	}
	q, err := s.standardize(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	refs := make([]domainMol.Fingerprint, len(input.References))
	for i, smi := range input.References {
		r, err := s.standardize(ctx, smi)
		if err != nil {
			return nil, err
		}
		refs[i] = domainMol.EncodeMACCS(r.Molecule)
	}
	qfp := domainMol.EncodeMACCS(q.Molecule)
	return &SimilarityResult{
		Scores: domainMol.BulkTanimoto(qfp, refs),
		Max:    domainMol.MaxTanimoto(qfp, refs),
	}, nil
}

//Personal.AI order the ending
