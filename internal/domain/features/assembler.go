package features

import (
	"fmt"

	"github.com/turtacn/ToxPredict/internal/domain/exposure"
	"github.com/turtacn/ToxPredict/internal/domain/molecule"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// Vector is one assembled model input.
type Vector []float64

// Assembler builds model inputs from validated artifacts.  It is stateless
// and safe for concurrent use.
type Assembler struct {
	artifacts *ModelArtifacts
}

// NewAssembler returns an assembler over a.
func NewAssembler(a *ModelArtifacts) *Assembler {
	return &Assembler{artifacts: a}
}

// Artifacts returns the model bundle the assembler reads.
func (s *Assembler) Artifacts() *ModelArtifacts { return s.artifacts }

// Assemble fingerprints mol and builds its model input.
func (s *Assembler) Assemble(mol *molecule.Molecule, meta exposure.Record) (Vector, error) {
	if mol == nil {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "Invalid SMILES")
	}
	return s.AssembleFingerprint(molecule.EncodeMACCS(mol), meta)
}

// AssembleFingerprint lays out the model input as
// [one-hot and scaled metadata columns] ++ [masked fingerprint bits].
// A categorical value with no matching "<Field>_<Value>" column leaves its
// indicators at zero.
func (s *Assembler) AssembleFingerprint(fp molecule.Fingerprint, meta exposure.Record) (Vector, error) {
	a := s.artifacts
	out := make(Vector, a.Dim())

	for _, field := range a.categoricalFields {
		raw, _ := meta.Value(field)
		if idx, ok := a.columnIndex[field+"_"+exposure.Format(raw)]; ok {
			out[idx] = 1
		}
	}

	raw := make([]float64, len(a.featureNames))
	for i, name := range a.featureNames {
		v, present, err := meta.Number(name)
		if !present {
			return nil, errors.New(errors.ErrCodeInputInvalid, "Numerical fields error").
				WithDetail(fmt.Sprintf("%s is missing", name))
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInputInvalid, "Numerical fields error")
		}
		raw[i] = v
	}
	scaled, err := a.scaler.Transform(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBundleInvalid, "scaler rejected input")
	}
	for i, idx := range a.numIndices {
		out[idx] = scaled[i]
	}

	pos := len(a.trainColumns)
	for bit, on := range a.fpMask {
		if !on {
			continue
		}
		if fp.Bit(bit) {
			out[pos] = 1
		}
		pos++
	}
	return out, nil
}

//Personal.AI order the ending
