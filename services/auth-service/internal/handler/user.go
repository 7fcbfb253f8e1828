package handler

import (
	"net/http"

	"github.com/sboof911/HyperTube/services/auth-service/internal/payload"
	"github.com/sboof911/HyperTube/services/auth-service/internal/usecase"
)

// Me returns the public view of the authenticated user.
func (h *AuthHTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.respondError(w, usecase.ErrUserNotFound)
		return
	}

	h.respondJSON(w, http.StatusOK, payload.NewPublicUser(user))
}
