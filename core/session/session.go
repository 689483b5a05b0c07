package session

import (
	"context"
	"errors"

	"jamjar/model"
)

// Registration failures.
var (
	ErrInvalidRegistration = errors.New("registration requires host, playlist and both credentials")
	ErrSnapshotFailed      = errors.New("failed to snapshot playlist contents")
)

// Outcome is the result of one add-track call.
type Outcome int

const (
	// OutcomeAppended means the track was appended to the playlist.
	OutcomeAppended Outcome = iota
	// OutcomeAlreadyPresent means the track was already known; no
	// external call was made.
	OutcomeAlreadyPresent
	// OutcomeNotFound means the share token is unknown.
	OutcomeNotFound
	// OutcomeAppendFailed means the external append (or its single
	// post-refresh retry) failed.
	OutcomeAppendFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAppended:
		return "appended"
	case OutcomeAlreadyPresent:
		return "already_present"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeAppendFailed:
		return "append_failed"
	default:
		return "unknown"
	}
}

// CatalogGateway is the slice of the provider client the session core
// depends on.
type CatalogGateway interface {
	PlaylistTracks(ctx context.Context, playlistID, accessToken string) ([]model.Track, error)
	AppendTrack(ctx context.Context, playlistID, accessToken, trackID string) error
}

// TokenRefresher renews an access token from a refresh token. The second
// return value is the refresh token to keep using afterwards.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}
