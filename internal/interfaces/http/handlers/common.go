// Package handlers implements the HTTP endpoints of the prediction service.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the error body.  The "error" key carries the same message
// the legacy web form expects.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// writeError writes err as an ErrorResponse with the given status.
func writeError(w http.ResponseWriter, statusCode int, err *errors.AppError) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:  err.Message,
		Code:   err.Code.String(),
		Detail: err.Detail,
	})
}

// writeAppError maps application errors to HTTP status codes through the
// code table.  Foreign errors are masked as internal errors.
func writeAppError(w http.ResponseWriter, err error, logger logging.Logger) {
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		logger.Error("Unhandled error", logging.Err(err))
		writeError(w, http.StatusInternalServerError, errors.Internal("internal server error"))
		return
	}
	status := errors.HTTPStatusForCode(ae.Code)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", logging.String("code", ae.Code.String()), logging.Err(err))
	}
	writeError(w, status, ae)
}

// decodeJSON decodes the request body into dst.  Numbers are kept as
// json.Number so inputs are coerced by the exposure rules, not by the decoder.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.New(errors.ErrCodeBadRequest, "request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeBadRequest, "request body too large")
		}
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body").WithDetail(err.Error())
	}
	return nil
}

//Personal.AI order the ending
