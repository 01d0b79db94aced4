package internal

// HandlerFunc is the signature for views.
// It receives a Context and returns an error.
// Returning a non-nil error hands the request to the app's error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func Auth(next unchained.HandlerFunc) unchained.HandlerFunc {
//	    return func(c unchained.Context) error {
//	        if !isAuthenticated(c) {
//	            return c.Redirect(302, c.URLFor("security.login"))
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from views.
type ErrorHandler func(Context, error) error

// chain wraps h so that the first middleware is the outermost.
func chain(h HandlerFunc, mws ...[]Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		for j := len(mws[i]) - 1; j >= 0; j-- {
			h = mws[i][j](h)
		}
	}
	return h
}
