package model

import "time"

// AppendLog records one attempt to append a track through a share token.
type AppendLog struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Token     string    `gorm:"size:64;index" json:"token"`
	TrackID   string    `gorm:"size:64" json:"trackId"`
	Outcome   string    `gorm:"size:32" json:"outcome"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName keeps the table name stable regardless of GORM pluralization rules.
func (AppendLog) TableName() string {
	return "append_logs"
}
