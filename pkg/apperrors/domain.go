package apperrors

import (
	"net/http"
)

/*
Factories and predefined values for common business-logic errors.
*/

// --- Factory functions (wrap repository errors) ---

// ErrNotFound converts a repository not-found error (e.g. gorm.ErrRecordNotFound)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a duplicate error into a 409 AppError.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// --- Factory functions (fresh errors) ---

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Predefined values for frequent, static errors ---

var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"business_logic",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"User with this email already exists",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusBadRequest,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"auth",
	"Password does not meet the minimum requirements",
	http.StatusBadRequest,
)

// --- Travel plans ---

var ErrPlanAlreadyJoined = New(
	CodeAlreadyExists,
	"travel_plan",
	"Join request for this plan already exists",
	http.StatusConflict,
)

var ErrCannotJoinOwnPlan = New(
	CodeInvalidOperation,
	"travel_plan",
	"Host cannot join own travel plan",
	http.StatusBadRequest,
)

// --- Reviews ---

var ErrSelfReviewNotAllowed = New(
	CodeInvalidOperation,
	"review",
	"Cannot review yourself",
	http.StatusBadRequest,
)

var ErrTripNotFinished = New(
	CodeInvalidOperation,
	"review",
	"You can only review after the trip is completed",
	http.StatusBadRequest,
)

var ErrAlreadyReviewed = New(
	CodeAlreadyExists,
	"review",
	"You have already reviewed this host",
	http.StatusBadRequest,
)

var ErrNotAcceptedParticipant = New(
	CodeForbidden,
	"review",
	"Only accepted participants can review this host",
	http.StatusForbidden,
)

// --- Payments ---

var ErrUnknownPlan = New(
	CodeValidationFailed,
	"payment",
	"Unknown subscription plan",
	http.StatusBadRequest,
)

var ErrPhoneRequired = New(
	CodeValidationFailed,
	"payment",
	"Phone number is required for checkout",
	http.StatusBadRequest,
)

var ErrInvalidCoupon = New(
	CodeValidationFailed,
	"payment",
	"Invalid coupon code",
	http.StatusBadRequest,
)

// ErrGatewayError covers any checkout/validation failure of the payment provider.
var ErrGatewayError = New(
	CodeExternalServiceError,
	"payment",
	"Payment provider error",
	http.StatusInternalServerError,
)
