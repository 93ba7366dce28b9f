package apperror

import "net/http"

// AppError is an error with the HTTP status and client-safe message to answer with.
// Err is logged server-side only.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func BadGateway(message string, err error) *AppError {
	return New(http.StatusBadGateway, message, err)
}
