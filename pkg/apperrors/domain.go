package apperrors

import (
	"net/http"
)

// Factories for wrapping repository errors and predeclared variables for the
// common static cases.

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound and friends)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// EntitlementDenied builds the 403 returned when a plan quota or feature gate
// blocks an operation. Details carry {used, limit, currentPlan, upgradeMessage}
// so the UI can render a specific upgrade prompt.
func EntitlementDenied(details interface{}) *AppError {
	return New(CodeEntitlementDenied, "subscription",
		"Your current plan does not allow this operation", http.StatusForbidden).WithDetails(details)
}

// --- Auth & accounts ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

// --- Businesses ---

var ErrBusinessNotFound = New(
	CodeNotFound,
	"business",
	"Business not found",
	http.StatusNotFound,
)

var ErrNotBusinessOwner = New(
	CodeForbidden,
	"business",
	"You do not own this business",
	http.StatusForbidden,
)

// --- Subscriptions & payments ---

var ErrSubscriptionCancelled = New(
	CodeInvalidOperation,
	"subscription",
	"Subscription is already cancelled",
	http.StatusBadRequest,
)

var ErrInvalidPaymentAmount = New(
	CodeConflict,
	"payment",
	"Payment amount does not match the invoice",
	http.StatusConflict,
)

var ErrPaymentProviderError = New(
	CodeExternalServiceError,
	"payment",
	"Payment provider error",
	http.StatusServiceUnavailable,
)

// --- Reviews ---

var ErrReviewNotFound = New(
	CodeNotFound,
	"review",
	"Review not found",
	http.StatusNotFound,
)

var ErrReviewAlreadyEnhanced = New(
	CodeInvalidStatus,
	"review",
	"Review has already been enhanced",
	http.StatusBadRequest,
)

var ErrReviewNotEnhanced = New(
	CodeInvalidStatus,
	"review",
	"Review has no pending AI generation to act on",
	http.StatusConflict,
)

// --- QR codes ---

var ErrQRCodeNotFound = New(
	CodeNotFound,
	"qrcode",
	"QR code not found",
	http.StatusNotFound,
)
