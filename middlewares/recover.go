package middlewares

import (
	"log/slog"
	"runtime"

	"github.com/dmitrymomot/unchained"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

type recoverConfig struct {
	stackSize  int
	printStack bool
}

// RecoverOption configures the recover middleware.
type RecoverOption func(*recoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.stackSize = size
	}
}

// WithRecoverDisablePrintStack disables capturing the stack trace.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.printStack = false
	}
}

// Recover returns middleware that turns a panicking view into a *PanicError
// handled by the app's error handler.
func Recover(opts ...RecoverOption) unchained.Middleware {
	cfg := &recoverConfig{
		stackSize:  DefaultStackSize,
		printStack: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next unchained.HandlerFunc) unchained.HandlerFunc {
		return func(c unchained.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				attrs := []any{slog.Any("panic", r), slog.String("endpoint", c.Endpoint())}
				var stack []byte
				if cfg.printStack && cfg.stackSize > 0 {
					stack = make([]byte, cfg.stackSize)
					stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, slog.String("stack", string(stack)))
				}
				c.Logger().ErrorContext(c, "panic recovered", attrs...)
				err = &PanicError{Value: r, Stack: stack}
			}()

			return next(c)
		}
	}
}
