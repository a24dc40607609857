// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/coreframe-ai/coreframe-server/internal/middleware"
	"github.com/coreframe-ai/coreframe-server/internal/services/user_services"
)

type AuthHandler struct {
	AuthService *user_services.AuthService
}

func NewAuthHandler(authService *user_services.AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

// Register creates a new account and signs the caller in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.AuthService.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "Account created; please log in", http.StatusCreated)
		return
	}

	middleware.SetAuthCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       u.ID,
		"email":    u.Email,
		"username": u.Username,
	})
}

// Login authenticates and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	middleware.SetAuthCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       u.ID,
		"email":    u.Email,
		"username": u.Username,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
