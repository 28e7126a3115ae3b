package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeTimeout is used when an upstream dependency did not answer in time
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Onboarding lifecycle error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the
	// application's current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Payment verification error codes. These are resubmittable: the vendor
// may correct the evidence and try again.
const (
	// ErrCodeAmountMismatch is used when the reported amount deviates from
	// the plan price beyond tolerance
	ErrCodeAmountMismatch = "ERR_AMOUNT_MISMATCH"
	// ErrCodeInvalidReceiver is used when the evidence names the wrong
	// receiving address
	ErrCodeInvalidReceiver = "ERR_INVALID_RECEIVER"
	// ErrCodeVerificationWindowExpired is used when the evidence is stale
	ErrCodeVerificationWindowExpired = "ERR_VERIFICATION_WINDOW_EXPIRED"
	// ErrCodeBankVerificationFailed is used when the payment provider could
	// not confirm the transaction
	ErrCodeBankVerificationFailed = "ERR_BANK_VERIFICATION_FAILED"
)

// Document intake error codes
const (
	// ErrCodeFileTooLarge is used when an upload exceeds the size cap
	ErrCodeFileTooLarge = "ERR_FILE_TOO_LARGE"
	// ErrCodeInvalidFileSignature is used when the file content does not
	// match an allowed format
	ErrCodeInvalidFileSignature = "ERR_INVALID_FILE_SIGNATURE"
	// ErrCodeSecurityViolation is used for spoofed uploads, malware hits,
	// and other audited security failures
	ErrCodeSecurityViolation = "ERR_SECURITY_VIOLATION"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeTimeout:  http.StatusGatewayTimeout,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Lifecycle errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// Payment verification failures -> 422 Unprocessable Entity
	ErrCodeAmountMismatch:            http.StatusUnprocessableEntity,
	ErrCodeInvalidReceiver:           http.StatusUnprocessableEntity,
	ErrCodeVerificationWindowExpired: http.StatusUnprocessableEntity,
	ErrCodeBankVerificationFailed:    http.StatusUnprocessableEntity,

	// Document intake failures
	ErrCodeFileTooLarge:         http.StatusRequestEntityTooLarge,
	ErrCodeInvalidFileSignature: http.StatusUnprocessableEntity,
	ErrCodeSecurityViolation:    http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the API error codes.
// Domain errors carry short codes; the HTTP surface exposes the ERR_ form.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                   ErrCodeNotFound,
	"ALREADY_EXISTS":              ErrCodeAlreadyExists,
	"VALIDATION_ERROR":            ErrCodeValidation,
	"SECURITY_ERROR":              ErrCodeSecurityViolation,
	"STATE_CONFLICT":              ErrCodeInvalidState,
	"CONCURRENT_MODIFICATION":     ErrCodeConcurrencyConflict,
	"RATE_LIMIT_EXCEEDED":         ErrCodeRateLimited,
	"PERSISTENCE_ERROR":           ErrCodeInternal,
	"TIMEOUT":                     ErrCodeTimeout,
	"UNAUTHORIZED":                ErrCodeUnauthorized,
	"FORBIDDEN":                   ErrCodeForbidden,
	"AMOUNT_MISMATCH":             ErrCodeAmountMismatch,
	"INVALID_RECEIVER":            ErrCodeInvalidReceiver,
	"VERIFICATION_WINDOW_EXPIRED": ErrCodeVerificationWindowExpired,
	"BANK_VERIFICATION_FAILED":    ErrCodeBankVerificationFailed,
	"FILE_TOO_LARGE":              ErrCodeFileTooLarge,
	"INVALID_FILE_SIGNATURE":      ErrCodeInvalidFileSignature,
	"BAD_REQUEST":                 ErrCodeBadRequest,
	"INTERNAL_ERROR":              ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
