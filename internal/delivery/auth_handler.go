package delivery

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Vovarama1992/podcast_maker/internal/domain"
	"github.com/Vovarama1992/podcast_maker/internal/ports"
)

type AuthHandler struct {
	auth ports.AuthService
}

func NewAuthHandler(auth ports.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// POST /auth/login — {"password":"..."} → {"token":"...","expires_at":"..."}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidPassword):
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	case err != nil:
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}
