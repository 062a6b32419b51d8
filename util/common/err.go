package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/authsvc/auth-service/logger"
)

func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

func NewError(a ...any) error {
	msg := fmt.Sprintln(a...)
	return errors.New(msg)
}

func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field string // JSON name of the field
	Tag   string // failed rule, e.g. "required", "email", "min"
	Param string // rule parameter, e.g. "8" for min=8
}

// HTTPError is an error that carries the HTTP status it should be reported with.
// Msg is a message id resolved by the locale package when the error is rendered.
type HTTPError struct {
	Status int
	Type   string
	Msg    string
	Fields []FieldError
	Err    error
}

// NewHTTPError creates an HTTPError whose Type is derived from the status.
func NewHTTPError(status int, msg string) *HTTPError {
	return &HTTPError{Status: status, Type: errorType(status), Msg: msg}
}

func BadRequest(msg string) *HTTPError   { return NewHTTPError(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *HTTPError    { return NewHTTPError(http.StatusForbidden, msg) }
func NotFound(msg string) *HTTPError     { return NewHTTPError(http.StatusNotFound, msg) }

// Wrap records the underlying cause.
func (e *HTTPError) Wrap(err error) *HTTPError {
	e.Err = err
	return e
}

// WithField appends an invalid field to the error.
func (e *HTTPError) WithField(field, tag, param string) *HTTPError {
	e.Fields = append(e.Fields, FieldError{Field: field, Tag: tag, Param: param})
	return e
}

func (e *HTTPError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s", e.Status, e.Msg)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, " [%s:%s]", f.Field, f.Tag)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status for err, 500 unless err is or wraps an HTTPError.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Status != 0 {
		return httpErr.Status
	}
	return http.StatusInternalServerError
}

// errorType names errors the way http-errors style clients expect,
// e.g. 400 -> "BadRequestError", 500 -> "InternalServerError".
func errorType(status int) string {
	text := strings.ReplaceAll(http.StatusText(status), " ", "")
	text = strings.ReplaceAll(text, "-", "")
	if text == "" {
		return "Error"
	}
	if strings.HasSuffix(text, "Error") {
		return text
	}
	return text + "Error"
}
