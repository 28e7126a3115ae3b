package shared

// DomainError represents a domain-level error
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
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation             = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrSecurity               = NewDomainError("SECURITY_ERROR", "Security violation detected")
	ErrRateLimitExceeded      = NewDomainError("RATE_LIMIT_EXCEEDED", "Too many requests, back off and retry later")
	ErrStateConflict          = NewDomainError("STATE_CONFLICT", "Operation not allowed in current state")
	ErrConcurrentModification = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrPersistence            = NewDomainError("PERSISTENCE_ERROR", "Storage operation failed")
	ErrTimeout                = NewDomainError("TIMEOUT", "External dependency did not respond in time")
	ErrUnauthorized           = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden              = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
)

// Payment verification errors. These are resubmittable: the applicant may
// correct the evidence and try again.
var (
	ErrAmountMismatch            = NewDomainError("AMOUNT_MISMATCH", "Reported amount does not match the expected plan price")
	ErrInvalidReceiver           = NewDomainError("INVALID_RECEIVER", "Payment receiver does not match the platform receiving address")
	ErrVerificationWindowExpired = NewDomainError("VERIFICATION_WINDOW_EXPIRED", "Payment evidence is older than the verification window")
	ErrBankVerificationFailed    = NewDomainError("BANK_VERIFICATION_FAILED", "Payment provider could not confirm the transaction")
)

// Document intake errors
var (
	ErrFileTooLarge         = NewDomainError("FILE_TOO_LARGE", "File exceeds the maximum allowed size")
	ErrInvalidFileSignature = NewDomainError("INVALID_FILE_SIGNATURE", "File content does not match an allowed format")
)

// NewValidationError creates a validation error with a specific message
func NewValidationError(message string) *DomainError {
	return NewDomainError("VALIDATION_ERROR", message)
}

// NewSecurityError creates a security error with a specific message.
// Security errors are fatal to the triggering operation and must be audited.
func NewSecurityError(message string) *DomainError {
	return NewDomainError("SECURITY_ERROR", message)
}

// IsSecurityError reports whether err carries the SECURITY_ERROR code
func IsSecurityError(err error) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == ErrSecurity.Code
}
