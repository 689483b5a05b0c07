package repository

import (
	"context"

	"jamjar/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppendLogRepository records append attempts for later inspection.
type AppendLogRepository interface {
	Record(ctx context.Context, token, trackID, outcome string) error
	RecentByToken(ctx context.Context, token string, limit int) ([]*model.AppendLog, error)
}

// gormAppendLogRepository is the GORM implementation.
type gormAppendLogRepository struct {
	db *gorm.DB
}

// NewGormAppendLogRepository creates a GORM append-log repository.
func NewGormAppendLogRepository(db *gorm.DB) AppendLogRepository {
	return &gormAppendLogRepository{db: db}
}

// Record inserts one log entry.
func (r *gormAppendLogRepository) Record(ctx context.Context, token, trackID, outcome string) error {
	entry := &model.AppendLog{
		ID:      uuid.NewString(),
		Token:   token,
		TrackID: trackID,
		Outcome: outcome,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// RecentByToken returns the newest entries for a token.
func (r *gormAppendLogRepository) RecentByToken(ctx context.Context, token string, limit int) ([]*model.AppendLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []*model.AppendLog
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
