package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/jwk"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter returns a new HTTP router.
func NewRouter(ctx context.Context, kp jwk.Pair) http.Handler {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("http")
	router := mux.NewRouter()

	// Health routes
	HealthController(ctx, router)

	// Token verification keys
	router.Handle("/.well-known/jwks.json", jwksHandler(kp)).Methods(http.MethodGet)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(withCaller(kp))
	UserController(ctx, api)
	OrganizationController(ctx, api)
	InvitationController(ctx, api)
	CategoryController(ctx, api)

	router.NotFoundHandler = http.HandlerFunc(renderNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(renderMethodNotAllowed)

	// Context handler
	// Adds context to the request
	h := NewLoggingMiddleware(router, logger)
	h = NewContextHandler(ctx)(h)
	if cfg != nil {
		h = corsHandler(cfg.HTTP.CORS)(h)
	}
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(h)

	return h
}

func corsHandler(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedHeaders(cfg.AllowedHeaders),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods(cfg.AllowedMethods),
	)
}

type recoveryLogger struct {
	logger *log.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic while serving request", "err", v)
}
