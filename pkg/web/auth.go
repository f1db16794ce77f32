package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/jwk"
	"github.com/charmbracelet/roster/pkg/proto"
	"github.com/gorilla/mux"
)

var errInvalidToken = proto.NewError(proto.Unauthorized, "Invalid or expired token")

// parseBearer returns the token of a bearer Authorization header.
func parseBearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authenticate resolves the caller of a request. Requests without a token
// are anonymous.
func authenticate(r *http.Request, kp jwk.Pair) (proto.Caller, error) {
	token, ok := parseBearer(r)
	if !ok {
		return proto.Caller{}, nil
	}

	ctx := r.Context()
	cfg := config.FromContext(ctx)
	claims, err := kp.Verify(cfg.HTTP.PublicURL, token)
	if err != nil {
		return proto.Caller{}, err
	}

	c, err := backend.FromContext(ctx).Caller(ctx, claims.Subject)
	if err != nil {
		return proto.Caller{}, err
	}

	// The identity provider's email wins over the stored one.
	if claims.Email != "" {
		c.Email = claims.Email
	}

	return c, nil
}

// withCaller attaches the request's caller to its context.
func withCaller(kp jwk.Pair) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.FromContext(r.Context())
			c, err := authenticate(r, kp)
			if err != nil {
				switch {
				case errors.Is(err, jwk.ErrInvalidToken):
					logger.Debug("invalid token", "err", err)
				case errors.Is(err, proto.ErrUserNotFound):
					logger.Debug("token subject not found", "err", err)
				default:
					renderError(w, r, err)
					return
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="roster"`)
				renderError(w, r, errInvalidToken)
				return
			}

			if !c.IsAnonymous() {
				logger.Debug("authenticated", "user", c.UserID)
			}

			r = r.WithContext(proto.WithCallerContext(r.Context(), c))
			next.ServeHTTP(w, r)
		})
	}
}

func jwksHandler(kp jwk.Pair) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		renderJSON(w, http.StatusOK, kp.JWKS())
	})
}
