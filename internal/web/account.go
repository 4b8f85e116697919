package web

import (
	"errors"
	"net/http"
	"time"

	"ownidp/internal/password"
	"ownidp/internal/session"
	"ownidp/internal/trustroot"
	"ownidp/pkg/sentinel"
)

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, loggedIn := h.currentSession(r)
	h.render(w, r, "index", map[string]any{
		"Title":    "OpenID identity",
		"Identity": h.origin(r) + "/",
		"LoggedIn": loggedIn,
	})
}

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, r.URL.Query().Get("return_to"), "")
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	returnTo := r.Form.Get("return_to")

	noPassword := false
	switch err := h.passwords.Validate(r.Form.Get("password")); {
	case err == nil:
	case errors.Is(err, password.ErrNoPassword):
		// First run: no password configured yet, let the owner in and
		// flag the session so pages can prompt for one.
		noPassword = true
	case errors.Is(err, password.ErrMismatch):
		h.renderLogin(w, r, returnTo, "Wrong password.")
		return
	default:
		h.serverError(w, r, err)
		return
	}

	sess := session.New(r.UserAgent(), h.sessionTTL)
	sess.NoPassword = noPassword
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.serverError(w, r, err)
		return
	}
	token, err := h.codec.Issue(sess.ID, h.sessionTTL)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if noPassword {
		http.Redirect(w, r, "/account/change_password", http.StatusFound)
		return
	}
	http.Redirect(w, r, safeReturnTo(returnTo), http.StatusFound)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, returnTo, errMsg string) {
	h.render(w, r, "login", map[string]any{
		"Title":    "Log in",
		"ReturnTo": returnTo,
		"Error":    errMsg,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if id, err := h.codec.Verify(cookie.Value); err == nil {
			if err := h.sessions.Delete(r.Context(), id); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				h.logger.Warn("session delete failed", "error", err)
			}
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/account", http.StatusFound)
}

func (h *Handler) handleChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireLogin(w, r) {
		return
	}
	h.renderChangePassword(w, r, "")
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if !h.requireLogin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	pw := r.Form.Get("password")
	if pw == "" {
		h.renderChangePassword(w, r, "Password must not be empty.")
		return
	}
	if pw != r.Form.Get("confirm") {
		h.renderChangePassword(w, r, "Passwords do not match.")
		return
	}
	if err := h.passwords.Set(pw); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/account", http.StatusFound)
}

func (h *Handler) renderChangePassword(w http.ResponseWriter, r *http.Request, errMsg string) {
	h.render(w, r, "password", map[string]any{
		"Title": "Change password",
		"Error": errMsg,
	})
}

func (h *Handler) handleTrusted(w http.ResponseWriter, r *http.Request) {
	if !h.requireLogin(w, r) {
		return
	}
	entries, err := h.roots.Items(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "trusted", map[string]any{
		"Title":   "Trusted sites",
		"Entries": entries,
	})
}

func (h *Handler) handleTrustedDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	if !h.requireLogin(w, r) {
		return
	}
	entry, ok := h.findTrusted(w, r)
	if !ok {
		return
	}
	h.render(w, r, "trusted_confirm", map[string]any{
		"Title": "Remove trusted site",
		"Entry": entry,
	})
}

func (h *Handler) handleTrustedDelete(w http.ResponseWriter, r *http.Request) {
	if !h.requireLogin(w, r) {
		return
	}
	entry, ok := h.findTrusted(w, r)
	if !ok {
		return
	}
	if err := h.roots.Delete(r.Context(), entry.URL); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/account/trusted", http.StatusFound)
}

// findTrusted resolves the token parameter to a stored entry, writing a 404
// when it no longer exists. Tokens travel as a query or form value because
// their percent escapes do not survive path-segment routing.
func (h *Handler) findTrusted(w http.ResponseWriter, r *http.Request) (trustroot.Entry, bool) {
	_ = r.ParseForm()
	token := r.Form.Get("token")
	entries, err := h.roots.Items(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return trustroot.Entry{}, false
	}
	for _, e := range entries {
		if e.Token == token {
			return e, true
		}
	}
	http.NotFound(w, r)
	return trustroot.Entry{}, false
}
