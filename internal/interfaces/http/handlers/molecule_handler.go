package handlers

import (
	"net/http"

	"github.com/turtacn/ToxPredict/internal/application/molecule"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// MoleculeHandler exposes structure utilities that do not need a model.
type MoleculeHandler struct {
	svc    molecule.Service
	logger logging.Logger
}

func NewMoleculeHandler(svc molecule.Service, logger logging.Logger) *MoleculeHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &MoleculeHandler{svc: svc, logger: logger}
}

// SMILESRequest is the body of the standardize and fingerprint endpoints.
type SMILESRequest struct {
	SMILES string `json:"smiles"`
}

// SimilarityRequest is the body of the similarity endpoint.
type SimilarityRequest struct {
	Query      string   `json:"query"`
	References []string `json:"references"`
}

// Standardize handles POST /api/v1/molecules/standardize.
func (h *MoleculeHandler) Standardize(w http.ResponseWriter, r *http.Request) {
	var req SMILESRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	res, err := h.svc.Standardize(r.Context(), req.SMILES)
	if err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Fingerprint handles POST /api/v1/molecules/fingerprint.
func (h *MoleculeHandler) Fingerprint(w http.ResponseWriter, r *http.Request) {
	var req SMILESRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	res, err := h.svc.Fingerprint(r.Context(), req.SMILES)
	if err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Similarity handles POST /api/v1/molecules/similarity.
func (h *MoleculeHandler) Similarity(w http.ResponseWriter, r *http.Request) {
	var req SimilarityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeBadRequest, "query is required"))
		return
	}
	res, err := h.svc.Similarity(r.Context(), &molecule.SimilarityInput{Query: req.Query, References: req.References})
	if err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

//Personal.AI order the ending
