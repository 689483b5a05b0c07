package server

import (
	"context"
	"encoding/json"
	"net/http"

	"jamjar/config"
	"jamjar/core/session"
	"jamjar/model"
	"jamjar/repository"
)

// AuthFlow is the credential-manager surface the handlers depend on.
type AuthFlow interface {
	BeginAuthorization() (redirectURL, nonce string, err error)
	CompleteAuthorization(ctx context.Context, code, state, cookieState string) (accessToken, refreshToken, hostID string, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken, nextRefreshToken string, err error)
}

// Catalog is the gateway surface the proxy endpoints depend on.
type Catalog interface {
	PlaylistTracks(ctx context.Context, playlistID, accessToken string) ([]model.Track, error)
	Search(ctx context.Context, accessToken, query string, limit int) ([]model.Track, error)
}

// APIHandler handles all API requests.
type APIHandler struct {
	cfg       *config.Config
	auth      AuthFlow
	catalog   Catalog
	registrar *session.Registrar
	appender  *session.Appender
	sessions  repository.SessionRepository
	appendLog repository.AppendLogRepository
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	cfg *config.Config,
	auth AuthFlow,
	catalog Catalog,
	registrar *session.Registrar,
	appender *session.Appender,
	sessions repository.SessionRepository,
	appendLog repository.AppendLogRepository,
) *APIHandler {
	return &APIHandler{
		cfg:       cfg,
		auth:      auth,
		catalog:   catalog,
		registrar: registrar,
		appender:  appender,
		sessions:  sessions,
		appendLog: appendLog,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
