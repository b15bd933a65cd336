package server

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

// BasicRouter implements the [Router] interface.
//
// Uses [mux.Router] internally for path variables and method matching. Paths are matched
// in their encoded form so a variable may contain an escaped slash ("AC%2FDC").
type BasicRouter struct {
	mux         *mux.Router
	middlewares []Middleware
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         mux.NewRouter().UseEncodedPath(),
		middlewares: []Middleware{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for path. With methods, other methods get 405.
//
// The handler is wrapped with all registered middleware.
func (r *BasicRouter) Handle(path string, handler http.Handler, methods ...string) {
	route := r.mux.Handle(path, r.Apply(handler))
	if len(methods) > 0 {
		route.Methods(methods...)
	}
}

// NotFound sets the handler used when no route matches, wrapped with all registered middleware.
func (r *BasicRouter) NotFound(handler http.Handler) {
	r.mux.NotFoundHandler = r.Apply(handler)
}

// MethodNotAllowed sets the handler used when a path matches but the method does not.
func (r *BasicRouter) MethodNotAllowed(handler http.Handler) {
	r.mux.MethodNotAllowedHandler = r.Apply(handler)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}

// Vars returns the decoded path variables of the current request.
func Vars(r *http.Request) map[string]string {
	vars := mux.Vars(r)
	decoded := make(map[string]string, len(vars))
	for k, v := range vars {
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
		decoded[k] = v
	}
	return decoded
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}
