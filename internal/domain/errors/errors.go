package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("authentication required")

	// Registry errors
	ErrUnauthorized     = errors.New("caller is not the owner")
	ErrOperationPaused  = errors.New("registry is paused")
	ErrSupplyExhausted  = errors.New("max supply reached")
	ErrTokenNotFound    = errors.New("token does not exist")
	ErrAlreadyLocked    = errors.New("token URI already updated")
	ErrTransferFailed   = errors.New("transfer failed")
	ErrPayoutNotAllowed = errors.New("payout wallet not configured")

	// ErrPayoutUnconfirmed means a payout was broadcast but its outcome is unknown
	ErrPayoutUnconfirmed = errors.New("payout broadcast but not confirmed")
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func Unauthenticated(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHENTICATED", message, ErrUnauthenticated)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", err)
}

// statusMapping pairs each registry sentinel with its transport representation.
var statusMapping = []struct {
	err    error
	status int
	code   string
}{
	{ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{ErrOperationPaused, http.StatusConflict, "OPERATION_PAUSED"},
	{ErrSupplyExhausted, http.StatusConflict, "SUPPLY_EXHAUSTED"},
	{ErrTokenNotFound, http.StatusNotFound, "TOKEN_NOT_FOUND"},
	{ErrAlreadyLocked, http.StatusConflict, "ALREADY_LOCKED"},
	{ErrTransferFailed, http.StatusBadGateway, "TRANSFER_FAILED"},
	{ErrPayoutNotAllowed, http.StatusServiceUnavailable, "PAYOUT_UNAVAILABLE"},
	{ErrPayoutUnconfirmed, http.StatusGatewayTimeout, "PAYOUT_UNCONFIRMED"},
	{ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
}

// FromError converts any error into an AppError. Existing AppErrors pass through
// unchanged; wrapped sentinels keep their specific code.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, m := range statusMapping {
		if errors.Is(err, m.err) {
			return NewAppError(m.status, m.code, err.Error(), err)
		}
	}
	return InternalError(err)
}
