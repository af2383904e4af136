// Package analyzer folds raw query records into per-fingerprint patterns and
// ranks them by total time spent.
package analyzer

import (
	"context"

	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/fingerprint"
	"golang.org/x/sync/errgroup"
)

// Aggregate folds records, in order, into one pattern per fingerprint.
// Durations are trusted; a negative one corrupts the statistics of its pattern.
func Aggregate(records []entity.RawQueryRecord) map[string]*entity.QueryPattern {
	return aggregateFrom(records, 0)
}

// aggregateFrom is Aggregate for a slice that starts at position base of the
// full input.
func aggregateFrom(records []entity.RawQueryRecord, base int) map[string]*entity.QueryPattern {
	patterns := make(map[string]*entity.QueryPattern)

	for i := range records {
		r := &records[i]
		fp := fingerprint.Fingerprint(r.SQLText)

		p, ok := patterns[fp]
		if !ok {
			patterns[fp] = &entity.QueryPattern{
				Fingerprint:       fp,
				PatternID:         fingerprint.Digest(fp),
				OccurrenceCount:   1,
				TotalDurationMs:   r.DurationMs,
				AverageDurationMs: r.DurationMs,
				MaxDurationMs:     r.DurationMs,
				UsersHistogram:    map[string]int64{r.User: 1},
				ClientsHistogram:  map[string]int64{r.ClientAddress: 1},
				ExampleSQL:        r.SQLText,
				FirstSeen:         base + i,
			}
			continue
		}

		p.OccurrenceCount++
		p.TotalDurationMs += r.DurationMs
		p.AverageDurationMs = p.TotalDurationMs / p.OccurrenceCount
		if r.DurationMs > p.MaxDurationMs {
			p.MaxDurationMs = r.DurationMs
		}
		p.UsersHistogram[r.User]++
		p.ClientsHistogram[r.ClientAddress]++
	}

	return patterns
}

// Merge folds the partial aggregate src into dst. Patterns only present in src
// are copied, so src stays untouched. The example query of the merged pattern
// comes from whichever side saw the fingerprint first.
func Merge(dst, src map[string]*entity.QueryPattern) {
	for fp, s := range src {
		d, ok := dst[fp]
		if !ok {
			dst[fp] = clonePattern(s)
			continue
		}

		d.OccurrenceCount += s.OccurrenceCount
		d.TotalDurationMs += s.TotalDurationMs
		d.AverageDurationMs = d.TotalDurationMs / d.OccurrenceCount
		if s.MaxDurationMs > d.MaxDurationMs {
			d.MaxDurationMs = s.MaxDurationMs
		}
		for user, n := range s.UsersHistogram {
			d.UsersHistogram[user] += n
		}
		for client, n := range s.ClientsHistogram {
			d.ClientsHistogram[client] += n
		}
		if s.FirstSeen < d.FirstSeen {
			d.FirstSeen = s.FirstSeen
			d.ExampleSQL = s.ExampleSQL
		}
	}
}

// AggregateParallel splits records into contiguous chunks, aggregates them on
// up to workers goroutines and merges the partials. The result is identical to
// Aggregate(records).
func AggregateParallel(ctx context.Context, records []entity.RawQueryRecord, workers int) (map[string]*entity.QueryPattern, error) {
	if workers <= 1 || len(records) < 2*workers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Aggregate(records), nil
	}

	chunk := (len(records) + workers - 1) / workers
	partials := make([]map[string]*entity.QueryPattern, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(records) {
			break
		}
		end := start + chunk
		if end > len(records) {
			end = len(records)
		}

		w := w // per-iteration copy; go.mod targets go 1.21 loop semantics
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partials[w] = aggregateFrom(records[start:end], start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]*entity.QueryPattern)
	for _, partial := range partials {
		Merge(result, partial)
	}
	return result, nil
}

func clonePattern(p *entity.QueryPattern) *entity.QueryPattern {
	c := *p
	c.UsersHistogram = make(map[string]int64, len(p.UsersHistogram))
	for k, v := range p.UsersHistogram {
		c.UsersHistogram[k] = v
	}
	c.ClientsHistogram = make(map[string]int64, len(p.ClientsHistogram))
	for k, v := range p.ClientsHistogram {
		c.ClientsHistogram[k] = v
	}
	return &c
}
