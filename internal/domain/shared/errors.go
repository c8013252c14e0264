package shared

// DomainError represents a domain-level error with a stable machine-readable code.
// Callers match on Code, never on Message.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation          = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient orderable stock available")
	ErrIntegrityViolation  = NewDomainError("INTEGRITY_VIOLATION", "Operation would violate a stock integrity invariant")
	ErrAlreadyCompleted    = NewDomainError("ALREADY_COMPLETED", "Requisition has already been completed into a purchase order")
	ErrTerminalStatus      = NewDomainError("TERMINAL_STATUS", "Order is in a terminal status and cannot transition")
)

// IsCode reports whether err is a DomainError carrying the given code
func IsCode(err error, code string) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
}
