// Package apperr defines the error taxonomy shared by services and HTTP handlers.
//
// Every error carries a stable machine code, a client-safe message and the
// HTTP status it maps to. The wrapped cause is for logs only and is never
// rendered to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeTokenMissing = "TOKEN_MISSING"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeQueryFailed  = "QUERY_FAILED"
	CodeServer       = "SERVER_ERROR"
)

type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so sentinels compare equal to copies carrying a
// different message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) Msg(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

func (e *Error) Msgf(format string, args ...any) *Error {
	return e.Msg(fmt.Sprintf(format, args...))
}

func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

var (
	ErrValidation   = New(CodeValidation, http.StatusBadRequest, "Validation failed")
	ErrTokenMissing = New(CodeTokenMissing, http.StatusUnauthorized, "Authentication token is missing")
	ErrTokenInvalid = New(CodeTokenInvalid, http.StatusUnauthorized, "Invalid or expired token")
	ErrForbidden    = New(CodeForbidden, http.StatusForbidden, "You do not have permission to perform this action")
	ErrNotFound     = New(CodeNotFound, http.StatusNotFound, "Resource not found")
	ErrConflict     = New(CodeConflict, http.StatusConflict, "Resource already exists")
	ErrQueryFailed  = New(CodeQueryFailed, http.StatusInternalServerError, "Database operation failed")
	ErrServer       = New(CodeServer, http.StatusInternalServerError, "Internal server error")
)

// Query wraps a storage failure without leaking it to the client.
func Query(err error) *Error {
	return ErrQueryFailed.Wrap(err)
}

// From normalises any error into an *Error. Unknown errors become
// SERVER_ERROR with the generic message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return ErrServer.Wrap(err)
}

func StatusOf(err error) int {
	if ae := From(err); ae != nil {
		return ae.Status
	}
	return http.StatusOK
}
