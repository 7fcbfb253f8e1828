package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sboof911/HyperTube/services/auth-service/internal/payload"
	"github.com/sboof911/HyperTube/services/auth-service/internal/usecase"
)

const (
	tokenTypeBearer  = "Bearer"
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

func (h *AuthHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}

	user, accessToken, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:               req.Name,
		Username:           req.Username,
		Email:              req.Email,
		Password:           req.Password,
		ProfilePicture:     req.ProfilePicture,
		LanguagePreference: req.LanguagePreference,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, payload.RegisterResponse{
		User:        payload.NewPublicUser(user),
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
	})
}

func (h *AuthHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}

	_, accessToken, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		// A missing identifier and a wrong password must look the same to
		// the client.
		if errors.Is(err, usecase.ErrUserNotFound) {
			err = usecase.ErrInvalidCredentials
		}
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, payload.AuthTokenResponse{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
	})
}

func (h *AuthHTTPHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")
	state := uuid.NewString()

	authURL, err := h.oauthUsecase.AuthorizationURL(providerName, state)
	if err != nil {
		h.respondError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   oauthStateMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *AuthHTTPHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		h.respondJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid oauth state"})
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		h.respondJSON(w, http.StatusBadRequest, messageResponse{Message: "missing authorization code"})
		return
	}

	accessToken, err := h.oauthUsecase.HandleCallback(r.Context(), providerName, code)
	if err != nil {
		h.respondError(w, err)
		return
	}

	redirectURL := fmt.Sprintf(
		"%s/auth/callback?access_token=%s",
		strings.TrimRight(h.authServiceCfg.FrontendURL, "/"),
		url.QueryEscape(accessToken),
	)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}
