package repository

import (
	"context"
	"database/sql"
	"fmt"

	"jamjar/model"
)

// SessionRepository defines the interface for share-session data operations.
type SessionRepository interface {
	// Upsert replaces any existing record for the same token, including
	// its known-track set. Last registration wins.
	Upsert(ctx context.Context, session *model.Session) error
	// GetByToken returns the session with its known-track set loaded,
	// or nil when the token is unknown.
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	// AddKnownTrack marks a track as present in the playlist. The set
	// only grows; re-adding an already known track is not an error.
	AddKnownTrack(ctx context.Context, token, trackID string) error
	// UpdateAccessToken rotates the stored access token after a refresh.
	UpdateAccessToken(ctx context.Context, token, accessToken string) error
	// UpdateRefreshToken persists a provider-rotated refresh token.
	UpdateRefreshToken(ctx context.Context, token, refreshToken string) error
}

// mysqlSessionRepository implements SessionRepository for MySQL.
type mysqlSessionRepository struct {
	db *sql.DB
}

// NewMySQLSessionRepository creates a new mysqlSessionRepository.
func NewMySQLSessionRepository(db *sql.DB) SessionRepository {
	return &mysqlSessionRepository{db: db}
}

// Upsert writes the session and its known-track set in one transaction.
func (r *mysqlSessionRepository) Upsert(ctx context.Context, session *model.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO sessions (token, host_id, playlist_id, access_token, refresh_token)
	VALUES (?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		host_id = VALUES(host_id),
		playlist_id = VALUES(playlist_id),
		access_token = VALUES(access_token),
		refresh_token = VALUES(refresh_token)
	`
	if _, err := tx.ExecContext(ctx, query,
		session.Token, session.HostID, session.PlaylistID,
		session.AccessToken, session.RefreshToken); err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", session.Token, err)
	}

	// Re-registration resets the ledger to the fresh snapshot.
	if _, err := tx.ExecContext(ctx, "DELETE FROM session_tracks WHERE token = ?", session.Token); err != nil {
		return fmt.Errorf("failed to clear known tracks for session %s: %w", session.Token, err)
	}

	for trackID := range session.KnownTracks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO session_tracks (token, track_id) VALUES (?, ?)",
			session.Token, trackID); err != nil {
			return fmt.Errorf("failed to insert known track %s for session %s: %w", trackID, session.Token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert for session %s: %w", session.Token, err)
	}
	return nil
}

// GetByToken retrieves a session by its share token.
func (r *mysqlSessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	query := "SELECT token, host_id, playlist_id, access_token, refresh_token, created_at, updated_at FROM sessions WHERE token = ?"
	row := r.db.QueryRowContext(ctx, query, token)
	session := &model.Session{}
	err := row.Scan(&session.Token, &session.HostID, &session.PlaylistID,
		&session.AccessToken, &session.RefreshToken, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Session not found
		}
		return nil, fmt.Errorf("failed to scan session row for token %s: %w", token, err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT track_id FROM session_tracks WHERE token = ?", token)
	if err != nil {
		return nil, fmt.Errorf("failed to query known tracks for token %s: %w", token, err)
	}
	defer rows.Close()

	session.KnownTracks = make(map[string]struct{})
	for rows.Next() {
		var trackID string
		if err := rows.Scan(&trackID); err != nil {
			return nil, fmt.Errorf("failed to scan known track for token %s: %w", token, err)
		}
		session.KnownTracks[trackID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate known tracks for token %s: %w", token, err)
	}

	return session, nil
}

// AddKnownTrack inserts a track into the known set, ignoring duplicates.
func (r *mysqlSessionRepository) AddKnownTrack(ctx context.Context, token, trackID string) error {
	query := "INSERT IGNORE INTO session_tracks (token, track_id) VALUES (?, ?)"
	if _, err := r.db.ExecContext(ctx, query, token, trackID); err != nil {
		return fmt.Errorf("failed to add known track %s for token %s: %w", trackID, token, err)
	}
	return nil
}

// UpdateAccessToken stores a fresh access token for the session.
func (r *mysqlSessionRepository) UpdateAccessToken(ctx context.Context, token, accessToken string) error {
	query := "UPDATE sessions SET access_token = ?, updated_at = NOW() WHERE token = ?"
	if _, err := r.db.ExecContext(ctx, query, accessToken, token); err != nil {
		return fmt.Errorf("failed to update access token for session %s: %w", token, err)
	}
	return nil
}

// UpdateRefreshToken stores a rotated refresh token for the session.
func (r *mysqlSessionRepository) UpdateRefreshToken(ctx context.Context, token, refreshToken string) error {
	query := "UPDATE sessions SET refresh_token = ?, updated_at = NOW() WHERE token = ?"
	if _, err := r.db.ExecContext(ctx, query, refreshToken, token); err != nil {
		return fmt.Errorf("failed to update refresh token for session %s: %w", token, err)
	}
	return nil
}
