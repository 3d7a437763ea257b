package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes are "<MODULE>_<NNN>"; the module prefix groups related failures.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_012"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Aliases used by call sites that only care about the broad category.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES ErrorCode = "MOL_001"
	ErrCodeSMARTSInvalid         ErrorCode = "MOL_016"
)

// Prediction Module Error Codes
const (
	ErrCodeInputInvalid   ErrorCode = "PRD_001"
	ErrCodeModelNotLoaded ErrorCode = "PRD_002"
	ErrCodeEventPublish   ErrorCode = "PRD_003"
)

// Configuration / Artifact Bundle Error Codes
const (
	ErrCodeConfigInvalid     ErrorCode = "CFG_002"
	ErrCodeBundleInvalid     ErrorCode = "CFG_001"
	ErrCodeBundleUnreachable ErrorCode = "CFG_003"
)

// AI/ML Module Error Codes
const (
	ErrCodeAIModelNotAvailable    ErrorCode = "AI_001"
	ErrCodeAIInferenceFailed      ErrorCode = "AI_002"
	ErrCodeAIModelVersionMismatch ErrorCode = "AI_003"
	ErrCodeAIInputInvalid         ErrorCode = "AI_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeMoleculeInvalidSMILES: http.StatusBadRequest,
	ErrCodeSMARTSInvalid:         http.StatusInternalServerError,

	ErrCodeInputInvalid:   http.StatusBadRequest,
	ErrCodeModelNotLoaded: http.StatusServiceUnavailable,
	ErrCodeEventPublish:   http.StatusInternalServerError,

	ErrCodeConfigInvalid:     http.StatusServiceUnavailable,
	ErrCodeBundleInvalid:     http.StatusServiceUnavailable,
	ErrCodeBundleUnreachable: http.StatusServiceUnavailable,

	ErrCodeAIModelNotAvailable:    http.StatusServiceUnavailable,
	ErrCodeAIInferenceFailed:      http.StatusInternalServerError,
	ErrCodeAIModelVersionMismatch: http.StatusServiceUnavailable,
	ErrCodeAIInputInvalid:         http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache operation failed",
	ErrCodeExternalService:    "external service error",

	ErrCodeMoleculeInvalidSMILES: "Invalid SMILES",
	ErrCodeSMARTSInvalid:         "invalid SMARTS pattern",

	ErrCodeInputInvalid:   "Numerical fields error",
	ErrCodeModelNotLoaded: "Model not loaded properly",
	ErrCodeEventPublish:   "failed to publish prediction event",

	ErrCodeConfigInvalid:     "invalid configuration",
	ErrCodeBundleInvalid:     "artifact bundle is inconsistent",
	ErrCodeBundleUnreachable: "artifact bundle could not be read",

	ErrCodeAIModelNotAvailable:    "AI model not available",
	ErrCodeAIInferenceFailed:      "AI inference failed",
	ErrCodeAIModelVersionMismatch: "AI model version mismatch",
	ErrCodeAIInputInvalid:         "invalid input for AI model",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
