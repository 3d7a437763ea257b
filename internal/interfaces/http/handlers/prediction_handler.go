package handlers

import (
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/ToxPredict/internal/application/prediction"
	"github.com/turtacn/ToxPredict/internal/domain/exposure"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// PredictionHandler serves toxicity predictions.
type PredictionHandler struct {
	svc    prediction.Service
	logger logging.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(svc prediction.Service, logger logging.Logger) *PredictionHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PredictionHandler{svc: svc, logger: logger}
}

// PredictForm handles POST /predict with the form fields smiles, temperature,
// light, time, concentration, species and habitat.
func (h *PredictionHandler) PredictForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeBadRequest, "invalid form body").WithDetail(err.Error()))
		return
	}
	inputs := make(map[string]any, len(exposure.Bindings))
	for _, b := range exposure.Bindings {
		if vals, ok := r.PostForm[b.Key]; ok && len(vals) > 0 {
			inputs[b.Key] = vals[0]
		}
	}
	h.predict(w, r, r.PostForm.Get(exposure.KeySMILES), inputs)
}

// PredictJSON handles POST /api/v1/predictions.  The body is a flat object
// with the same keys as the form; numbers may be sent as JSON numbers or
// numeric strings.
func (h *PredictionHandler) PredictJSON(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	var smiles string
	if raw, present := body[exposure.KeySMILES]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeBadRequest, "smiles must be a string"))
			return
		}
		smiles = s
	}
	inputs := make(map[string]any, len(exposure.Bindings))
	for _, b := range exposure.Bindings {
		if v, ok := body[b.Key]; ok {
			inputs[b.Key] = v
		}
	}
	h.predict(w, r, smiles, inputs)
}

func (h *PredictionHandler) predict(w http.ResponseWriter, r *http.Request, smiles string, inputs map[string]any) {
	res, err := h.svc.Predict(r.Context(), &prediction.Request{
		SMILES:    strings.TrimSpace(smiles),
		Inputs:    inputs,
		RequestID: chimw.GetReqID(r.Context()),
	})
	if err != nil {
		writeAppError(w, err, h.logger.WithContext(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Options handles GET /api/v1/options.
func (h *PredictionHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.Options(r.Context())
	if err != nil {
		writeAppError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// Bundle handles GET /api/v1/bundle.
func (h *PredictionHandler) Bundle(w http.ResponseWriter, r *http.Request) {
	info := h.svc.Info()
	if info == nil {
		writeAppError(w, prediction.ErrModelNotLoaded, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

//Personal.AI order the ending
