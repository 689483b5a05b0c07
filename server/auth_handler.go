package server

import (
	"net/http"
	"net/url"

	"jamjar/core/auth"
	"jamjar/logger"
)

// stateCookieName holds the signed login-state cookie.
const stateCookieName = "jamjar_auth_state"

// LoginHandler starts the host authorization flow: it binds a fresh state
// nonce to a short-lived signed cookie and redirects to the provider.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	redirect, nonce, err := h.auth.BeginAuthorization()
	if err != nil {
		logger.Error("[Login] failed to begin authorization", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to begin authorization")
		return
	}

	signed, err := auth.GenerateStateToken(h.cfg.StateCookieSecret, nonce)
	if err != nil {
		logger.Error("[Login] failed to sign state cookie", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to begin authorization")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, redirect, http.StatusFound)
}

// CallbackHandler completes the authorization flow. On success the host's
// browser is redirected to the playlist-selection page with the token
// pair and user id in the URL fragment, matching what the front-end
// expects. The fragment never reaches this server again.
func (h *APIHandler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	var cookieState string
	if c, err := r.Cookie(stateCookieName); err == nil {
		nonce, err := auth.ParseStateToken(h.cfg.StateCookieSecret, c.Value)
		if err != nil {
			logger.Warn("[Callback] invalid state cookie", logger.ErrorField(err))
		} else {
			cookieState = nonce
		}
	}

	// The state cookie is single use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if code == "" {
		logger.Warn("[Callback] missing authorization code")
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	accessToken, refreshToken, hostID, err := h.auth.CompleteAuthorization(r.Context(), code, state, cookieState)
	if err != nil {
		logger.Warn("[Callback] authorization failed", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "authorization failed")
		return
	}

	fragment := url.Values{
		"access_token":  {accessToken},
		"refresh_token": {refreshToken},
		"user":          {hostID},
	}
	http.Redirect(w, r, "/select.html#"+fragment.Encode(), http.StatusFound)
}
