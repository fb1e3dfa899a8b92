// internal/admin/handler.go
package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gymflow/internal/logger"
)

type Handler struct {
	gate     *Gate
	sessions *Sessions
	log      *logger.Logger
}

func NewHandler(gate *Gate, sessions *Sessions, log *logger.Logger) *Handler {
	return &Handler{gate: gate, sessions: sessions, log: log}
}

// Mount registers the login and logout routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.gate.Check(req.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.log.Infow("admin login rejected", "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, sessionCookie(h.sessions.Issue()))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"authenticated": true})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Revoke(FromRequest(r))
	http.SetCookie(w, clearedCookie())
	w.WriteHeader(http.StatusNoContent)
}

// RequireSession rejects requests without a live admin session.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.sessions.Valid(FromRequest(r)) {
			writeError(w, http.StatusUnauthorized, "admin session required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
