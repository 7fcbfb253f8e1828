package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sboof911/HyperTube/services/auth-service/internal/config"
	"github.com/sboof911/HyperTube/services/auth-service/internal/usecase"
	"github.com/sboof911/HyperTube/shared/validation"
)

// AuthHTTPHandler exposes the auth service over HTTP and maps usecase errors
// to status codes.
type AuthHTTPHandler struct {
	authUsecase    usecase.AuthUsecase
	oauthUsecase   usecase.OAuthUsecase
	tokenUsecase   usecase.TokenUsecase
	authServiceCfg *config.AuthServiceConfig
	logger         *zerolog.Logger
}

func NewAuthHTTPHandler(
	authUsecase usecase.AuthUsecase,
	oauthUsecase usecase.OAuthUsecase,
	tokenUsecase usecase.TokenUsecase,
	authServiceCfg *config.AuthServiceConfig,
	logger *zerolog.Logger,
) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		authUsecase:    authUsecase,
		oauthUsecase:   oauthUsecase,
		tokenUsecase:   tokenUsecase,
		authServiceCfg: authServiceCfg,
		logger:         logger,
	}
}

// Routes builds the service router.
func (h *AuthHTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(h.cors)
	r.Use(h.requestLogger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/{provider}/login", h.OAuthLogin)
		r.Get("/{provider}/callback", h.OAuthCallback)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Get("/me", h.Me)
	})

	return r
}

type messageResponse struct {
	Message any `json:"message"`
}

func (h *AuthHTTPHandler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response body")
	}
}

// respondError translates usecase errors into stable user-facing responses.
// Anything unrecognized is an internal error with a generic message.
func (h *AuthHTTPHandler) respondError(w http.ResponseWriter, err error) {
	var fieldErrors validation.ValidationErrors
	if errors.As(err, &fieldErrors) {
		h.respondJSON(w, http.StatusBadRequest, messageResponse{Message: fieldErrors})
		return
	}

	switch {
	case errors.Is(err, usecase.ErrUserAlreadyExists),
		errors.Is(err, usecase.ErrUnknownProvider),
		errors.Is(err, usecase.ErrOAuthProvider):
		h.respondJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenExpired):
		h.respondJSON(w, http.StatusUnauthorized, messageResponse{Message: err.Error()})
	case errors.Is(err, usecase.ErrUserNotFound):
		h.respondJSON(w, http.StatusNotFound, messageResponse{Message: err.Error()})
	default:
		h.logger.Error().Err(err).Msg("request failed")
		h.respondJSON(w, http.StatusInternalServerError, messageResponse{Message: "something went wrong"})
	}
}

func (h *AuthHTTPHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
