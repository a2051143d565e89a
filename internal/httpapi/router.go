// Package httpapi exposes the HTTP surface: routing, the authentication
// middleware, access control, and the response envelope.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter assembles the route table. The rate-limit stage runs first,
// then the identity stage; access control is applied per route. Unmatched
// paths default to "authenticated required".
func NewRouter(h *Handlers, authenticate, rateLimit func(http.Handler) http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(rateLimit)
	r.Use(authenticate)

	r.Handle("/auth/register", RequireAnonymous(http.HandlerFunc(h.Register))).Methods(http.MethodPost)
	r.Handle("/auth/login", RequireAnonymous(http.HandlerFunc(h.Login))).Methods(http.MethodPost)
	r.Handle("/auth/logout", RequireAuth(http.HandlerFunc(h.Logout))).Methods(http.MethodPost)
	r.Handle("/user/home", http.HandlerFunc(h.Home)).Methods(http.MethodGet)
	r.Handle("/user/form", RequireAuth(http.HandlerFunc(h.UserForm))).Methods(http.MethodGet)

	// Router middleware does not run for unmatched paths, so the default
	// policy wraps the not-found handler explicitly.
	r.NotFoundHandler = authenticate(RequireAuth(http.HandlerFunc(notFound)))

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
