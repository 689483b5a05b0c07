package model

import "time"

// Session maps a share token to the host whose playlist is being
// crowd-sourced. The token is handed out to contributors; all writes to
// the playlist go through the host's stored credentials.
type Session struct {
	Token        string    `json:"token"`
	HostID       string    `json:"hostId"`
	PlaylistID   string    `json:"playlistId"`
	AccessToken  string    `json:"-"` // never exposed in API responses
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// KnownTracks is the de-duplication ledger: track IDs already present
	// in the playlist or appended through this service. Grows monotonically.
	KnownTracks map[string]struct{} `json:"-"`
}

// Knows reports whether trackID is already in the known-track set.
func (s *Session) Knows(trackID string) bool {
	_, ok := s.KnownTracks[trackID]
	return ok
}
