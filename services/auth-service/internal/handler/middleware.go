package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/sboof911/HyperTube/services/auth-service/internal/model"
)

type contextKey struct{}

var userContextKey = contextKey{}

// UserFromContext extracts the authenticated user placed by Authenticate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}

// Authenticate validates the bearer token and resolves its subject to a
// user before the request reaches the handler.
func (h *AuthHTTPHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.respondJSON(w, http.StatusUnauthorized, messageResponse{Message: "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			h.respondJSON(w, http.StatusUnauthorized, messageResponse{Message: "invalid authorization header format"})
			return
		}

		user, err := h.tokenUsecase.Authenticate(r.Context(), parts[1])
		if err != nil {
			h.respondError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors allows the configured front-end origins to call the service with
// credentials.
func (h *AuthHTTPHandler) cors(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(h.authServiceCfg.CORSOrigins))
	for _, origin := range h.authServiceCfg.CORSOrigins {
		allowed[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
