package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	passwordHash  []byte
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates an AuthHandler for the single admin principal.
// passwordHash is the bcrypt hash of the configured admin password.
func NewAuthHandler(passwordHash []byte, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{passwordHash: passwordHash, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signinRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := validatePayload(r.Context(), signinSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req signinRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if len(h.passwordHash) == 0 {
		http.Error(w, "Admin access not configured", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)) != nil {
		http.Error(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(h.tokenDuration).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr}, http.StatusOK)
}
