// Package errors provides the application error taxonomy for the Aisle
// API. Service-layer errors are AppError values so handlers can produce
// consistent responses without leaking internal details to clients.
package errors

import "net/http"

// AppError is a structured application error carrying a stable error
// code, a human-readable message, the HTTP status to respond with, and
// an optional wrapped internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap exposes the internal error to errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap returns a copy of sentinel that wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage returns a copy of sentinel with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Scenario errors.
var (
	ErrScenarioNotFound = &AppError{Code: "SCENARIO_NOT_FOUND", Message: "Budget scenario not found", StatusCode: http.StatusNotFound}
)

// Budget node errors. The move errors mirror the hierarchy engine's
// validation taxonomy one to one.
var (
	ErrNodeNotFound       = &AppError{Code: "NODE_NOT_FOUND", Message: "Budget node not found", StatusCode: http.StatusNotFound}
	ErrSelfParentNode     = &AppError{Code: "SELF_PARENT_NODE", Message: "A node cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrCircularReference  = &AppError{Code: "CIRCULAR_REFERENCE", Message: "Cannot move a node under its own descendant", StatusCode: http.StatusBadRequest}
	ErrInvalidMoveTarget  = &AppError{Code: "INVALID_MOVE_TARGET", Message: "Move target must be an existing folder", StatusCode: http.StatusBadRequest}
	ErrNodeNotFolder      = &AppError{Code: "NODE_NOT_FOLDER", Message: "This operation requires a folder node", StatusCode: http.StatusBadRequest}
	ErrInvalidChildPolicy = &AppError{Code: "INVALID_CHILD_POLICY", Message: "Deleting a node requires an explicit child policy: reparent or cascade", StatusCode: http.StatusBadRequest}
)

// Vendor errors.
var (
	ErrVendorNotFound = &AppError{Code: "VENDOR_NOT_FOUND", Message: "Vendor not found", StatusCode: http.StatusNotFound}
)

// Payment errors.
var (
	ErrPaymentNotFound    = &AppError{Code: "PAYMENT_NOT_FOUND", Message: "Payment not found", StatusCode: http.StatusNotFound}
	ErrInvalidPaymentKind = &AppError{Code: "INVALID_PAYMENT_KIND", Message: "Payment kind must be payment, refund, or credit", StatusCode: http.StatusBadRequest}
	ErrPaymentAlreadyPaid = &AppError{Code: "PAYMENT_ALREADY_PAID", Message: "Payment is already marked as paid", StatusCode: http.StatusConflict}
)
