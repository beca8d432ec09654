// Package api assembles the catalog HTTP API: routes, fallbacks and the
// middleware chain.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cosmos-catalog/internal/catalog"
	mw "cosmos-catalog/internal/http/middleware"
	"cosmos-catalog/internal/http/openapi"
	"cosmos-catalog/internal/http/respond"
)

// Options wires the router to its collaborators. Only Store is required.
type Options struct {
	Store catalog.Store
	// Users defaults to the demo users.
	Users *catalog.UserHandler
	// UsersAuth guards the user routes when set.
	UsersAuth     func(http.Handler) http.Handler
	Offline       func() bool
	AllowedOrigin string
	// Flags reports current feature-flag values for GET /_flags.
	Flags func() map[string]any
}

// Health endpoints bypass request logging and the offline gate.
var healthPaths = []string{"/health", "/ready"}

// NewRouter returns the API handler with middleware applied. Middleware wraps
// the router from outside so that 404, 405 and CORS preflight responses pass
// through it too.
func NewRouter(o Options) http.Handler {
	if o.Users == nil {
		o.Users = catalog.NewUserHandler(nil)
	}
	if o.Offline == nil {
		o.Offline = func() bool { return false }
	}

	r := mux.NewRouter()
	withFallbacks(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, req *http.Request) {
		if p, ok := o.Store.(catalog.Pinger); ok {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				respond.Error(w, http.StatusServiceUnavailable, "Store not ready", "")
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/_flags", func(w http.ResponseWriter, _ *http.Request) {
		flags := map[string]any{"offline": o.Offline()}
		if o.Flags != nil {
			flags = o.Flags()
		}
		respond.JSON(w, http.StatusOK, flags)
	}).Methods(http.MethodGet)

	r.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapi.YAML)
	}).Methods(http.MethodGet)

	// subrouters do not inherit the fallbacks
	apiRouter := r.PathPrefix("/api").Subrouter()
	withFallbacks(apiRouter)
	catalog.NewHandler(o.Store).Register(apiRouter)

	usersRouter := apiRouter.PathPrefix("/users").Subrouter()
	withFallbacks(usersRouter)
	if o.UsersAuth != nil {
		usersRouter.Use(o.UsersAuth)
	}
	o.Users.Register(usersRouter)

	var h http.Handler = r
	h = mw.Gzip(h)
	h = mw.CORS(o.AllowedOrigin)(h)
	h = mw.OfflineGate(o.Offline, healthPaths...)(h)
	h = mw.LogRequests(mw.WithSkips(healthPaths...))(h)
	h = mw.Recover(h)
	h = mw.RequestID(h)
	return h
}

func withFallbacks(r *mux.Router) {
	r.NotFoundHandler = http.HandlerFunc(respond.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(respond.MethodNotAllowed)
}
