// Package advisor attaches a short recommendation to a ranked query pattern.
package advisor

import (
	"context"

	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/entity"
)

// ErrUnavailable reports that an advisory service could not be reached or
// produced no usable text.
var ErrUnavailable = errwrap.New("advisor unavailable")

const (
	SourceRemote = "remote"
	SourceRules  = "rules"
)

// Advisor produces a recommendation for a pattern.
type Advisor interface {
	Advise(ctx context.Context, pattern *entity.QueryPattern) (string, error)
}

// Advice is a recommendation and where it came from.
type Advice struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}
