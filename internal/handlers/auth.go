package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openjournal/journal-backend/internal/httperr"
	"github.com/openjournal/journal-backend/internal/middleware"
	"github.com/openjournal/journal-backend/internal/services"
)

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler exposes signup, login and refresh.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup creates a new account and returns the user without a token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msgs := validateCredentials(req.Username, req.Password); len(msgs) > 0 {
		httperr.WriteValidation(w, msgs)
		return
	}

	user, err := h.auth.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.Public())
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msgs := validateCredentials(req.Username, req.Password); len(msgs) > 0 {
		httperr.WriteValidation(w, msgs)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Refresh exchanges an expired-but-validly-signed token for a fresh one.
// The guard on this route already re-resolved the principal.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user := middleware.Principal(r)
	if user == nil {
		httperr.WriteError(w, httperr.ErrUnauthorized)
		return
	}

	res, err := h.auth.Refresh(user)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
