package entity

import (
	"time"
)

// SlowQueryReport represents a row in the ranked slow query report of a connection
type SlowQueryReport struct {
	ID                int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ConnectionID      int64            `gorm:"index" json:"connection_id"`
	RunID             string           `gorm:"type:text;index" json:"run_id"`
	Rank              int              `json:"rank"`
	PatternID         string           `gorm:"type:text" json:"pattern_id"`
	Fingerprint       string           `gorm:"type:text" json:"fingerprint"`
	ExampleSQL        string           `gorm:"type:text" json:"example_sql"`
	OccurrenceCount   int64            `json:"occurrence_count"`
	TotalDurationMs   int64            `json:"total_duration_ms"`
	AverageDurationMs int64            `json:"average_duration_ms"`
	MaxDurationMs     int64            `json:"max_duration_ms"`
	Users             map[string]int64 `gorm:"serializer:json" json:"users"`
	Clients           map[string]int64 `gorm:"serializer:json" json:"clients"`
	Advice            string           `gorm:"type:text" json:"advice"`
	AdviceSource      string           `gorm:"type:text" json:"advice_source"`
	LastRefresh       time.Time        `json:"last_refresh"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TableName overrides the table name used by SlowQueryReport to `slow_query_reports`
func (SlowQueryReport) TableName() string {
	return "slow_query_reports"
}

// ReportRun marks the latest refresh of a connection's report. It exists even
// when the refresh found no patterns, so an empty report is still a snapshot.
type ReportRun struct {
	ConnectionID int64     `gorm:"primaryKey;autoIncrement:false" json:"connection_id"`
	RunID        string    `gorm:"type:text" json:"run_id"`
	TotalRecords int       `json:"total_records"`
	PatternCount int       `json:"pattern_count"`
	LastRefresh  time.Time `json:"last_refresh"`
}

func (ReportRun) TableName() string {
	return "report_runs"
}
