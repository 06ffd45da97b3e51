package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidSession = errors.New("invalid session")
)

// Registry rejections
var (
	ErrCallerNotOwner     = errors.New("caller is not the owner")
	ErrNotRegistered      = errors.New("Not registered for scholarship")
	ErrAlreadyClaimed     = errors.New("Scholarship already claimed")
	ErrPaused             = errors.New("registry is paused")
	ErrNotPaused          = errors.New("registry is not paused")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrChallengeNotFound  = errors.New("challenge not found or expired")
	ErrOnchainUnavailable = errors.New("on-chain contract not configured")
	ErrStreamUnavailable  = errors.New("event stream not configured")
)

// Stable error codes
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeNotRegistered     = "NOT_REGISTERED"
	CodeAlreadyClaimed    = "ALREADY_CLAIMED"
	CodePaused            = "PAUSED"
	CodeNotPaused         = "NOT_PAUSED"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeForbidden         = "FORBIDDEN"
	CodeUnavailable       = "SERVICE_UNAVAILABLE"
	CodeBadRequest        = "BAD_REQUEST"
	CodeInternalError     = "INTERNAL_ERROR"
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
		return e.Err.Error()
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
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Unavailable(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, CodeUnavailable, message, ErrOnchainUnavailable)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	mapped := FromError(err)
	return &AppError{
		Status:  mapped.Status,
		Code:    mapped.Code,
		Message: message,
		Err:     err,
	}
}

// FromError maps any error onto an AppError. Registry rejections keep their
// sentinel reachable through errors.Is.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrCallerNotOwner):
		return NewAppError(http.StatusForbidden, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrNotRegistered):
		return NewAppError(http.StatusNotFound, CodeNotRegistered, ErrNotRegistered.Error(), err)
	case errors.Is(err, ErrAlreadyClaimed):
		return NewAppError(http.StatusConflict, CodeAlreadyClaimed, ErrAlreadyClaimed.Error(), err)
	case errors.Is(err, ErrPaused):
		return NewAppError(http.StatusConflict, CodePaused, ErrPaused.Error(), err)
	case errors.Is(err, ErrNotPaused):
		return NewAppError(http.StatusConflict, CodeNotPaused, ErrNotPaused.Error(), err)
	case errors.Is(err, ErrInsufficientFunds):
		return NewAppError(http.StatusUnprocessableEntity, CodeInsufficientFunds, err.Error(), err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, err.Error(), err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrInvalidSession), errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrChallengeNotFound):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	case errors.Is(err, ErrOnchainUnavailable), errors.Is(err, ErrStreamUnavailable):
		return NewAppError(http.StatusServiceUnavailable, CodeUnavailable, err.Error(), err)
	}
	return InternalError(err)
}
