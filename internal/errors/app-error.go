package app_error

import (
	"encoding/json"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e AppError) Error() string {
	return e.Message
}

func (e AppError) JSON(w http.ResponseWriter) error {
	return json.NewEncoder(w).Encode(e)
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Message: msg,
		Field:   field,
	}
}

// Taxonomy helpers. Unauthenticated is only ever raised at action time,
// never during the websocket handshake.

func Unauthenticated(msg string) *AppError {
	return NewAppError(http.StatusUnauthorized, msg, "auth")
}

func Forbidden(msg string) *AppError {
	return NewAppError(http.StatusForbidden, msg, "role")
}

func NotFound(msg, field string) *AppError {
	return NewAppError(http.StatusNotFound, msg, field)
}

func InvalidInput(msg, field string) *AppError {
	return NewAppError(http.StatusBadRequest, msg, field)
}

func Conflict(msg, field string) *AppError {
	return NewAppError(http.StatusConflict, msg, field)
}

func Internal(msg, field string) *AppError {
	return NewAppError(http.StatusInternalServerError, msg, field)
}
