package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahmatrdn/go-query-insight/entity"
)

// Thresholds for RuleAdvisor.
const (
	SlowAverageMs     int64 = 1000
	VerySlowAverageMs int64 = 5000
	FrequentCount     int64 = 50
	HighImpactMs      int64 = 60000
)

// RuleAdvisor derives a recommendation from the pattern's own statistics.
// It never fails and never returns blank text.
type RuleAdvisor struct{}

func (RuleAdvisor) Advise(_ context.Context, p *entity.QueryPattern) (string, error) {
	return Recommend(p), nil
}

// Recommend joins every rule that fires, most severe first.
func Recommend(p *entity.QueryPattern) string {
	upper := strings.ToUpper(p.Fingerprint)
	var tips []string

	if p.AverageDurationMs >= VerySlowAverageMs {
		tips = append(tips, fmt.Sprintf("Average run time is %d ms; narrow the time range on the timestamp column or add a tag filter so fewer blocks are scanned.", p.AverageDurationMs))
	} else if p.AverageDurationMs >= SlowAverageMs {
		tips = append(tips, fmt.Sprintf("Average run time is %d ms; check that the filter columns are tags or part of the sort key.", p.AverageDurationMs))
	}

	if p.OccurrenceCount >= FrequentCount && p.AverageDurationMs >= SlowAverageMs {
		tips = append(tips, fmt.Sprintf("It ran %d times; precompute the result with a stream job or cache it on the client.", p.OccurrenceCount))
	} else if p.TotalDurationMs >= HighImpactMs {
		tips = append(tips, fmt.Sprintf("It accounts for %d ms in total; reducing its frequency has the largest payoff.", p.TotalDurationMs))
	}

	if strings.HasPrefix(upper, "SELECT") {
		if strings.Contains(upper, "SELECT *") {
			tips = append(tips, "Select only the columns you need instead of *.")
		}
		if !strings.Contains(upper, " WHERE ") {
			tips = append(tips, "The query has no WHERE clause; bound it by time range.")
		}
	}

	if len(tips) == 0 {
		return "No issue detected; keep monitoring this pattern."
	}
	return strings.Join(tips, " ")
}
