package analyzer

import (
	"sort"

	"github.com/rahmatrdn/go-query-insight/entity"
)

// RankByImpact orders patterns by total duration, highest first. Equal totals
// are ordered by fingerprint so the output is reproducible.
func RankByImpact(patterns map[string]*entity.QueryPattern) []*entity.QueryPattern {
	ranked := make([]*entity.QueryPattern, 0, len(patterns))
	for _, p := range patterns {
		ranked = append(ranked, p)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalDurationMs != ranked[j].TotalDurationMs {
			return ranked[i].TotalDurationMs > ranked[j].TotalDurationMs
		}
		return ranked[i].Fingerprint < ranked[j].Fingerprint
	})

	return ranked
}

// Top returns the first n ranked patterns, or all of them when n <= 0 or n
// exceeds the length.
func Top(ranked []*entity.QueryPattern, n int) []*entity.QueryPattern {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
