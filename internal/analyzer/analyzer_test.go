package analyzer

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(sql string, duration int64, user, client string) entity.RawQueryRecord {
	return entity.RawQueryRecord{
		Timestamp:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		SQLText:       sql,
		DurationMs:    duration,
		User:          user,
		ClientAddress: client,
		Database:      "power",
	}
}

func TestAggregateScenario(t *testing.T) {
	records := []entity.RawQueryRecord{
		record("SELECT * FROM meters WHERE ts > NOW - 10d", 500, "a", "10.0.0.1"),
		record("SELECT * FROM meters WHERE ts > NOW - 25d", 700, "b", "10.0.0.2"),
		record("SELECT avg(voltage) FROM meters GROUP BY location_id = '42'", 300, "a", "10.0.0.1"),
	}

	patterns := Aggregate(records)
	require.Len(t, patterns, 2)

	scan := patterns[fingerprint.Fingerprint(records[0].SQLText)]
	require.NotNil(t, scan)
	assert.Equal(t, "SELECT * FROM meters WHERE ts > NOW - ?d", scan.Fingerprint)
	assert.Equal(t, int64(2), scan.OccurrenceCount)
	assert.Equal(t, int64(1200), scan.TotalDurationMs)
	assert.Equal(t, int64(600), scan.AverageDurationMs)
	assert.Equal(t, int64(700), scan.MaxDurationMs)
	assert.Equal(t, map[string]int64{"a": 1, "b": 1}, scan.UsersHistogram)
	assert.Equal(t, map[string]int64{"10.0.0.1": 1, "10.0.0.2": 1}, scan.ClientsHistogram)
	assert.Equal(t, records[0].SQLText, scan.ExampleSQL)
	assert.Equal(t, fingerprint.Digest(scan.Fingerprint), scan.PatternID)

	avg := patterns[fingerprint.Fingerprint(records[2].SQLText)]
	require.NotNil(t, avg)
	assert.Equal(t, int64(1), avg.OccurrenceCount)
	assert.Equal(t, int64(300), avg.TotalDurationMs)

	ranked := RankByImpact(patterns)
	require.Len(t, ranked, 2)
	assert.Same(t, scan, ranked[0])
	assert.Same(t, avg, ranked[1])
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]entity.RawQueryRecord{}))
	assert.Empty(t, RankByImpact(map[string]*entity.QueryPattern{}))
	assert.Empty(t, RankByImpact(nil))
}

func TestAggregateAverageTruncates(t *testing.T) {
	patterns := Aggregate([]entity.RawQueryRecord{
		record("SELECT 1", 1, "u", "c"),
		record("SELECT 2", 2, "u", "c"),
		record("SELECT 3", 2, "u", "c"),
	})
	require.Len(t, patterns, 1)
	p := patterns["SELECT ?"]
	assert.Equal(t, int64(5), p.TotalDurationMs)
	assert.Equal(t, int64(1), p.AverageDurationMs)
}

func TestAggregateZeroDuration(t *testing.T) {
	patterns := Aggregate([]entity.RawQueryRecord{record("SELECT 1", 0, "u", "c")})
	p := patterns["SELECT ?"]
	assert.Equal(t, int64(0), p.TotalDurationMs)
	assert.Equal(t, int64(0), p.AverageDurationMs)
	assert.Equal(t, int64(0), p.MaxDurationMs)
}

func TestAggregateExampleIsFirstOccurrence(t *testing.T) {
	patterns := Aggregate([]entity.RawQueryRecord{
		record("SELECT * FROM t WHERE id = 1", 10, "u", "c"),
		record("SELECT * FROM t WHERE id = 2", 900, "u", "c"),
		record("SELECT * FROM t WHERE id = 3", 5, "u", "c"),
	})
	p := patterns["SELECT * FROM t WHERE id = ?"]
	assert.Equal(t, "SELECT * FROM t WHERE id = 1", p.ExampleSQL)
	assert.Equal(t, 0, p.FirstSeen)
}

// randomRecords builds records over a handful of templates with random
// literals, users, clients and durations.
func randomRecords(rng *rand.Rand, n int) []entity.RawQueryRecord {
	templates := []string{
		"SELECT * FROM meters WHERE ts > NOW - %dd",
		"SELECT avg(voltage) FROM meters WHERE location = 'loc%d'",
		"SELECT last(*) FROM d%d",
		"INSERT INTO d1001 VALUES (NOW, %d, 219, 0.31)",
		"SELECT count(*) FROM meters WHERE groupid = %d INTERVAL(1m)",
	}
	users := []string{"root", "reader", "etl", "grafana"}
	clients := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}

	records := make([]entity.RawQueryRecord, n)
	for i := range records {
		tpl := templates[rng.Intn(len(templates))]
		records[i] = record(
			fmt.Sprintf(tpl, rng.Intn(1000)),
			rng.Int63n(5000),
			users[rng.Intn(len(users))],
			clients[rng.Intn(len(clients))],
		)
	}
	return records
}

func TestAggregateInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		records := randomRecords(rng, rng.Intn(300))
		patterns := Aggregate(records)

		sums := map[string]int64{}
		counts := map[string]int64{}
		maxes := map[string]int64{}
		first := map[string]string{}
		for _, r := range records {
			fp := fingerprint.Fingerprint(r.SQLText)
			sums[fp] += r.DurationMs
			counts[fp]++
			if r.DurationMs > maxes[fp] {
				maxes[fp] = r.DurationMs
			}
			if _, ok := first[fp]; !ok {
				first[fp] = r.SQLText
			}
		}

		require.Len(t, patterns, len(sums))
		for fp, p := range patterns {
			assert.Equal(t, fp, p.Fingerprint)
			assert.Equal(t, sums[fp], p.TotalDurationMs)
			assert.Equal(t, counts[fp], p.OccurrenceCount)
			assert.Equal(t, p.TotalDurationMs/p.OccurrenceCount, p.AverageDurationMs)
			assert.Equal(t, maxes[fp], p.MaxDurationMs)
			assert.Equal(t, first[fp], p.ExampleSQL)

			var users, clients int64
			for _, n := range p.UsersHistogram {
				users += n
			}
			for _, n := range p.ClientsHistogram {
				clients += n
			}
			assert.Equal(t, p.OccurrenceCount, users)
			assert.Equal(t, p.OccurrenceCount, clients)
		}

		ranked := RankByImpact(patterns)
		require.Len(t, ranked, len(patterns))
		for i := 1; i < len(ranked); i++ {
			assert.GreaterOrEqual(t, ranked[i-1].TotalDurationMs, ranked[i].TotalDurationMs)
		}
	}
}

func TestAggregateParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	records := randomRecords(rng, 1000)

	want := Aggregate(records)
	for _, workers := range []int{0, 1, 3, 8, 64} {
		got, err := AggregateParallel(context.Background(), records, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestAggregateParallelCancelled(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	records := randomRecords(rng, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AggregateParallel(ctx, records, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMerge(t *testing.T) {
	first := aggregateFrom([]entity.RawQueryRecord{
		record("SELECT * FROM t WHERE id = 1", 100, "a", "c1"),
	}, 0)
	second := aggregateFrom([]entity.RawQueryRecord{
		record("SELECT * FROM t WHERE id = 2", 300, "b", "c1"),
		record("SELECT * FROM u", 50, "b", "c2"),
	}, 1)

	// Merging in reverse order must still keep the earliest example.
	dst := map[string]*entity.QueryPattern{}
	Merge(dst, second)
	Merge(dst, first)

	p := dst["SELECT * FROM t WHERE id = ?"]
	require.NotNil(t, p)
	assert.Equal(t, int64(2), p.OccurrenceCount)
	assert.Equal(t, int64(400), p.TotalDurationMs)
	assert.Equal(t, int64(200), p.AverageDurationMs)
	assert.Equal(t, int64(300), p.MaxDurationMs)
	assert.Equal(t, map[string]int64{"a": 1, "b": 1}, p.UsersHistogram)
	assert.Equal(t, map[string]int64{"c1": 2}, p.ClientsHistogram)
	assert.Equal(t, "SELECT * FROM t WHERE id = 1", p.ExampleSQL)
	assert.Equal(t, 0, p.FirstSeen)

	// src is never written to.
	assert.Equal(t, int64(1), second["SELECT * FROM t WHERE id = ?"].OccurrenceCount)
	assert.Equal(t, map[string]int64{"b": 1}, second["SELECT * FROM t WHERE id = ?"].UsersHistogram)
}

func TestRankByImpactTieBreak(t *testing.T) {
	patterns := map[string]*entity.QueryPattern{
		"SELECT b": {Fingerprint: "SELECT b", TotalDurationMs: 100},
		"SELECT a": {Fingerprint: "SELECT a", TotalDurationMs: 100},
		"SELECT c": {Fingerprint: "SELECT c", TotalDurationMs: 500},
	}

	ranked := RankByImpact(patterns)
	require.Len(t, ranked, 3)
	assert.Equal(t, "SELECT c", ranked[0].Fingerprint)
	assert.Equal(t, "SELECT a", ranked[1].Fingerprint)
	assert.Equal(t, "SELECT b", ranked[2].Fingerprint)
	assert.Len(t, patterns, 3)
}

func TestTop(t *testing.T) {
	ranked := []*entity.QueryPattern{{Fingerprint: "a"}, {Fingerprint: "b"}, {Fingerprint: "c"}}

	assert.Len(t, Top(ranked, 2), 2)
	assert.Len(t, Top(ranked, 3), 3)
	assert.Len(t, Top(ranked, 10), 3)
	assert.Len(t, Top(ranked, 0), 3)
	assert.Empty(t, Top(nil, 5))
}
