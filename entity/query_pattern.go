package entity

// QueryPattern aggregates every record whose SQL text normalizes to the same
// fingerprint.
type QueryPattern struct {
	Fingerprint       string           `json:"fingerprint"`
	PatternID         string           `json:"pattern_id"`
	OccurrenceCount   int64            `json:"occurrence_count"`
	TotalDurationMs   int64            `json:"total_duration_ms"`
	AverageDurationMs int64            `json:"average_duration_ms"`
	MaxDurationMs     int64            `json:"max_duration_ms"`
	UsersHistogram    map[string]int64 `json:"users"`
	ClientsHistogram  map[string]int64 `json:"clients"`
	ExampleSQL        string           `json:"example_sql"`

	// FirstSeen is the input position of the record that created the pattern.
	// It decides which ExampleSQL survives when partial aggregates are merged.
	FirstSeen int `json:"-"`
}
