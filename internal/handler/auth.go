package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fittra/trailstack/internal/auth"
	"github.com/fittra/trailstack/internal/store"
)

const sessionCookieName = "trailstack_session"

type AuthHandler struct {
	registry     *auth.Registry
	sessionStore *store.SessionStore
	logger       *slog.Logger
}

func NewAuthHandler(registry *auth.Registry, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		registry:     registry,
		sessionStore: ss,
		logger:       logger,
	}
}

type loginRequest struct {
	Code string `json:"code"`
}

// Login handles POST /login. Accepts the access code as JSON or form data,
// and on success sets the session cookie and returns the resolved role.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var code string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
		code = req.Code
	} else {
		code = r.FormValue("code")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "access code is required"})
		return
	}

	role, ok := h.registry.Authenticate(code)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid access code"})
		return
	}

	sess, err := h.sessionStore.Create(role)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	writeJSON(w, http.StatusOK, map[string]string{"role": role})
}

// Logout handles POST /logout. Deletes the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if sess, err := h.sessionStore.GetByToken(cookie.Value); err == nil && sess != nil {
			h.sessionStore.Delete(sess.ID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Session handles GET /api/session, returning the caller's role.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":            ac.Role,
		"can_manage_gear": auth.CanManageGear(r.Context()),
	})
}
