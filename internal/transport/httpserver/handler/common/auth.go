package common

import (
	"errors"
	"net/http"

	ownersdomain "pet-diary/internal/domain/owners"
	"pet-diary/internal/transport/httpserver/middleware"
)

type authMeResponse struct {
	ID          string  `json:"id"`
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	response := authMeResponse{ID: user.ID}
	profile, err := h.Owners.GetProfile(r.Context(), user.ID)
	switch {
	case err == nil:
		response.Email = profile.Email
		response.DisplayName = profile.DisplayName
	case errors.Is(err, ownersdomain.ErrProfileNotFound):
		if user.Email != "" {
			response.Email = &user.Email
		}
		if user.Name != "" {
			response.DisplayName = &user.Name
		}
	default:
		h.log.InternalError("auth.me: get profile failed", err, "owner_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// OwnerID writes a 401 and returns false when the request has no caller.
func OwnerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := middleware.OwnerIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return "", false
	}
	return ownerID, true
}
