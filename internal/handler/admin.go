package handler

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/studyai/studyai/internal/model"
)

// adminOnly guards the admin routes with HTTP basic auth. The password is
// checked against the bcrypt hash supplied at startup; an empty hash means
// the admin surface is disabled.
func (h *Handler) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(h.adminHash) == 0 {
			http.Error(w, "admin disabled", http.StatusForbidden)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok || username != "admin" {
			w.Header().Set("WWW-Authenticate", `Basic realm="studyai admin"`)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword(h.adminHash, []byte(password)); err != nil {
			slog.Warn("admin auth failed", "remote", r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", `Basic realm="studyai admin"`)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleAdminSessions lists the persisted session history.
func (h *Handler) handleAdminSessions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"count":    0,
			"sessions": []model.Session{},
		})
		return
	}

	sessions, err := h.store.ListSessions()
	if err != nil {
		slog.Error("list sessions", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}
