package apperror

import "errors"

type ErrorCode string

const (
	ErrorInvalid             ErrorCode = "invalid"
	ErrorUnauthorized        ErrorCode = "unauthorized"
	ErrorForbidden           ErrorCode = "forbidden"
	ErrorNotFound            ErrorCode = "not_found"
	ErrorAlreadyAnswered     ErrorCode = "already_answered"
	ErrorUpstreamInvalid     ErrorCode = "upstream_invalid"     // provider responded, payload failed validation
	ErrorUpstreamUnavailable ErrorCode = "upstream_unavailable" // network/HTTP failure or timeout, retryable
)

type AppError struct {
	Code    ErrorCode
	Message string
}

func (e *AppError) Error() string { return e.Message }

func NewInvalidError(msg string) error      { return &AppError{Code: ErrorInvalid, Message: msg} }
func NewUnauthorizedError(msg string) error { return &AppError{Code: ErrorUnauthorized, Message: msg} }
func NewForbiddenError(msg string) error    { return &AppError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error     { return &AppError{Code: ErrorNotFound, Message: msg} }

func NewAlreadyAnsweredError(msg string) error {
	return &AppError{Code: ErrorAlreadyAnswered, Message: msg}
}

func NewUpstreamInvalidError(msg string) error {
	return &AppError{Code: ErrorUpstreamInvalid, Message: msg}
}

func NewUpstreamUnavailableError(msg string) error {
	return &AppError{Code: ErrorUpstreamUnavailable, Message: msg}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsCode(err error, code ErrorCode) bool {
	if ae, ok := AsAppError(err); ok {
		return ae.Code == code
	}
	return false
}
