package entity

import "time"

// RawQueryRecord is a single query execution as reported by a log source.
// Records are immutable once produced.
type RawQueryRecord struct {
	ID            string    `gorm:"primaryKey;type:text" json:"id"`
	ConnectionID  int64     `gorm:"index" json:"connection_id"`
	Timestamp     time.Time `gorm:"index;not null" json:"timestamp"`
	SQLText       string    `gorm:"type:text;not null" json:"sql"`
	DurationMs    int64     `gorm:"not null" json:"duration_ms" validate:"gte=0"`
	User          string    `gorm:"type:text" json:"user"`
	ClientAddress string    `gorm:"type:text" json:"client_address"`
	Database      string    `gorm:"type:text" json:"database"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RawQueryRecord) TableName() string {
	return "raw_query_records"
}
