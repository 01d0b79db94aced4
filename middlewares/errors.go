package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/unchained"
)

// PanicError represents a recovered panic.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ErrorHandler returns an error handler that answers with a JSON body.
// HTTP errors keep their status; recovered panics and other errors answer
// 500 without leaking their message.
//
// Example:
//
//	unchained.CreateApp(env, unchained.WithErrorHandler(middlewares.ErrorHandler()))
func ErrorHandler() unchained.ErrorHandler {
	return func(c unchained.Context, err error) error {
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		if he := unchained.AsHTTPError(err); he != nil {
			code = he.Code
			msg = he.Message
		}
		body := map[string]any{"error": msg}
		if id := GetRequestID(c); id != "" {
			body["request_id"] = id
		}
		return c.JSON(code, body)
	}
}
