package session

import (
	"context"
	"fmt"

	"jamjar/core/share"
	"jamjar/logger"
	"jamjar/model"
	"jamjar/repository"
)

// Registrar turns a freshly authorized host/playlist pair into a share
// session: it snapshots the playlist's current contents and persists the
// session record under the pair's fingerprint.
type Registrar struct {
	sessions repository.SessionRepository
	catalog  CatalogGateway
}

// NewRegistrar creates a new Registrar.
func NewRegistrar(sessions repository.SessionRepository, catalog CatalogGateway) *Registrar {
	return &Registrar{sessions: sessions, catalog: catalog}
}

// Register validates the registration, seeds the known-track set from the
// playlist's current contents and upserts the session record. Registering
// the same host/playlist pair again replaces the stored credentials and
// resets the ledger to the fresh snapshot.
func (r *Registrar) Register(ctx context.Context, hostID, playlistID, accessToken, refreshToken string) (string, error) {
	if hostID == "" || playlistID == "" || accessToken == "" || refreshToken == "" {
		return "", ErrInvalidRegistration
	}

	token := share.Fingerprint(hostID, playlistID)

	tracks, err := r.catalog.PlaylistTracks(ctx, playlistID, accessToken)
	if err != nil {
		logger.Error("[Register] playlist snapshot failed",
			logger.String("host_id", hostID), logger.String("playlist_id", playlistID),
			logger.ErrorField(err))
		return "", fmt.Errorf("%w: %v", ErrSnapshotFailed, err)
	}

	known := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		known[t.ID] = struct{}{}
	}

	sess := &model.Session{
		Token:        token,
		HostID:       hostID,
		PlaylistID:   playlistID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		KnownTracks:  known,
	}

	if err := r.sessions.Upsert(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	logger.Info("[Register] session registered",
		logger.String("token", token), logger.String("host_id", hostID),
		logger.String("playlist_id", playlistID), logger.Int("known_tracks", len(known)))
	return token, nil
}
