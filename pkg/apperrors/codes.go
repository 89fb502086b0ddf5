package apperrors

// ErrorCode identifies an error class across the API surface.
type ErrorCode string

const (
	// System and unknown errors
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Generic business-logic codes (used by the factories in domain.go)
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeAlreadyExists     ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeLimitExceeded     ErrorCode = "LIMIT_EXCEEDED"
	CodeInvalidStatus     ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation  ErrorCode = "INVALID_OPERATION"
	CodeEntitlementDenied ErrorCode = "ENTITLEMENT_DENIED"

	// Authentication / authorization
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)
