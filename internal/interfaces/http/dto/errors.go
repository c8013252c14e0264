package dto

import "net/http"

// Error codes surfaced over HTTP. Domain errors carry these codes
// verbatim; transport-only failures use the HTTP-prefixed ones.
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeAlreadyCompleted    = "ALREADY_COMPLETED"
	ErrCodeTerminalStatus      = "TERMINAL_STATUS"
	ErrCodeIntegrityViolation  = "INTEGRITY_VIOLATION"

	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeMissingTenant   = "MISSING_TENANT"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. Business
// rule rejections are 422: the request was well-formed but the
// aggregate state forbids it.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeMissingTenant:       http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeAlreadyCompleted:    http.StatusUnprocessableEntity,
	ErrCodeTerminalStatus:      http.StatusUnprocessableEntity,
	ErrCodeIntegrityViolation:  http.StatusUnprocessableEntity,
	ErrCodePayloadTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting
// to 500 for codes the transport layer does not know.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
