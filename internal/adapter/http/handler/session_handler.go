package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/mandibook/mandiledger/internal/infrastructure/auth"
)

// SessionHandler issues the session token that enables cloud sync. The
// ledger is a single-proprietor system: credentials come from configuration,
// and everything except the mirror works without a session.
type SessionHandler struct {
	jwtManager *auth.JWTManager
	userID     string
	phone      string
	pin        string
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(jwtManager *auth.JWTManager, userID, phone, pin string) *SessionHandler {
	return &SessionHandler{
		jwtManager: jwtManager,
		userID:     userID,
		phone:      phone,
		pin:        pin,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Login validates the proprietor credentials and issues a session token.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	phoneOK := subtle.ConstantTimeCompare([]byte(req.Phone), []byte(h.phone)) == 1
	pinOK := subtle.ConstantTimeCompare([]byte(req.PIN), []byte(h.pin)) == 1
	if !phoneOK || !pinOK {
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	token, err := h.jwtManager.Generate(h.userID, h.phone)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, UserID: h.userID})
}
