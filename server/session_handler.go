package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"jamjar/core/session"
	"jamjar/core/spotify"
	"jamjar/db"
	"jamjar/logger"
	"jamjar/model"
)

// AddAccountRequest registers a host/playlist pair for crowd-sourcing.
type AddAccountRequest struct {
	User         string `json:"user"`
	Playlist     string `json:"playlist"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AddTrackRequest asks to append one track through a share token.
type AddTrackRequest struct {
	Token string `json:"token"`
	ID    string `json:"id"`
}

// AddAccountHandler registers the pair and returns the shareable link.
func (h *APIHandler) AddAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req AddAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.registrar.Register(r.Context(), req.User, req.Playlist, req.AccessToken, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRegistration) {
			writeError(w, http.StatusBadRequest, "user, playlist, access_token and refresh_token are required")
			return
		}
		if errors.Is(err, session.ErrSnapshotFailed) {
			writeError(w, http.StatusBadGateway, "failed to read playlist from provider")
			return
		}
		logger.Error("[AddAccount] registration failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"redirect": "/add.html#token=" + token,
	})
}

// withFreshCredentials runs fn with the session's access token, refreshing
// once and retrying once when the provider reports expired credentials.
// Mirrors the appender's refresh discipline for the read-only proxies.
func (h *APIHandler) withFreshCredentials(r *http.Request, sess *model.Session, fn func(accessToken string) error) error {
	err := fn(sess.AccessToken)
	if err == nil || !spotify.IsAuthExpired(err) {
		return err
	}

	access, refresh, rerr := h.auth.Refresh(r.Context(), sess.RefreshToken)
	if rerr != nil {
		return rerr
	}
	if uerr := h.sessions.UpdateAccessToken(r.Context(), sess.Token, access); uerr != nil {
		logger.Warn("[Proxy] failed to persist refreshed access token",
			logger.String("token", sess.Token), logger.ErrorField(uerr))
	}
	if refresh != "" && refresh != sess.RefreshToken {
		if uerr := h.sessions.UpdateRefreshToken(r.Context(), sess.Token, refresh); uerr != nil {
			logger.Warn("[Proxy] failed to persist rotated refresh token",
				logger.String("token", sess.Token), logger.ErrorField(uerr))
		}
	}
	sess.AccessToken = access

	return fn(access)
}

// GrabPlaylistHandler proxies the current playlist track list as JSON for
// the contributor page. Responses are cached briefly in Redis.
func (h *APIHandler) GrabPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	sess, err := h.sessions.GetByToken(r.Context(), token)
	if err != nil {
		logger.Error("[GrabPlaylist] session lookup failed", logger.String("token", token), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	if sess == nil {
		writeError(w, http.StatusBadRequest, "unknown token")
		return
	}

	if cached, err := db.GetPlaylistSnapshot(r.Context(), token); err == nil && cached != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"tracks": cached})
		return
	}

	var tracks []model.Track
	err = h.withFreshCredentials(r, sess, func(accessToken string) error {
		var ferr error
		tracks, ferr = h.catalog.PlaylistTracks(r.Context(), sess.PlaylistID, accessToken)
		return ferr
	})
	if err != nil {
		logger.Error("[GrabPlaylist] failed to fetch playlist",
			logger.String("token", token), logger.String("playlist_id", sess.PlaylistID),
			logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "failed to fetch playlist from provider")
		return
	}

	if err := db.CachePlaylistSnapshot(r.Context(), token, tracks); err != nil {
		logger.Warn("[GrabPlaylist] failed to cache snapshot", logger.String("token", token), logger.ErrorField(err))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tracks": tracks})
}

// AddTrackHandler appends a track through a share token.
func (h *APIHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req AddTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" || req.ID == "" {
		writeError(w, http.StatusBadRequest, "token and id are required")
		return
	}

	outcome, err := h.appender.AddTrack(r.Context(), req.Token, req.ID)
	switch outcome {
	case session.OutcomeAppended:
		if cerr := db.InvalidatePlaylistSnapshot(r.Context(), req.Token); cerr != nil {
			logger.Warn("[AddTrack] failed to invalidate snapshot cache",
				logger.String("token", req.Token), logger.ErrorField(cerr))
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": outcome.String()})
	case session.OutcomeAlreadyPresent:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": outcome.String()})
	case session.OutcomeNotFound:
		writeError(w, http.StatusBadRequest, "unknown token")
	default:
		if err != nil {
			logger.Error("[AddTrack] append failed",
				logger.String("token", req.Token), logger.String("track_id", req.ID),
				logger.ErrorField(err))
		}
		writeError(w, http.StatusForbidden, "failed to add track")
	}
}

// SearchHandler proxies a catalog search using the host's credentials so
// contributors never need their own account.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	query := r.URL.Query().Get("q")
	if token == "" || query == "" {
		writeError(w, http.StatusBadRequest, "token and q are required")
		return
	}

	sess, err := h.sessions.GetByToken(r.Context(), token)
	if err != nil {
		logger.Error("[Search] session lookup failed", logger.String("token", token), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	if sess == nil {
		writeError(w, http.StatusBadRequest, "unknown token")
		return
	}

	var tracks []model.Track
	err = h.withFreshCredentials(r, sess, func(accessToken string) error {
		var serr error
		tracks, serr = h.catalog.Search(r.Context(), accessToken, query, 20)
		return serr
	})
	if err != nil {
		logger.Error("[Search] catalog search failed",
			logger.String("token", token), logger.String("query", query), logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tracks": tracks})
}

// HistoryHandler returns the most recent append attempts for a token.
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	sess, err := h.sessions.GetByToken(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	if sess == nil {
		writeError(w, http.StatusBadRequest, "unknown token")
		return
	}

	entries, err := h.appendLog.RecentByToken(r.Context(), token, 50)
	if err != nil {
		logger.Error("[History] failed to load append log", logger.String("token", token), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}
