package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkrish/fintrack/internal/auth"
	"github.com/mkrish/fintrack/internal/service"
)

// registerAuthRoutes mounts the unauthenticated session endpoints: register,
// login, and the two halves of the password reset flow.
func registerAuthRoutes(mux *http.ServeMux, authService *service.AuthService) {
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username  string `json:"username"`
			Email     string `json:"email"`
			Password  string `json:"password"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		user, token, err := authService.Register(r.Context(), auth.RegisterInput{
			Username:  req.Username,
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"user_id": user.ID,
			"token":   token,
		})
	})

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Identifier string `json:"identifier"`
			Password   string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		user, token, err := authService.Login(r.Context(), req.Identifier, req.Password)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, auth.ErrAccountDisabled) {
				status = http.StatusForbidden
			}
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"user_id": user.ID,
			"role":    string(user.Role),
			"token":   token,
		})
	})

	mux.HandleFunc("POST /auth/reset-request", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Identifier string `json:"identifier"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := authService.RequestPasswordReset(r.Context(), req.Identifier); err != nil {
			http.Error(w, "reset request failed", http.StatusInternalServerError)
			return
		}
		// Always 204: the response must not reveal whether an account exists.
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /auth/reset", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token       string `json:"token"`
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
