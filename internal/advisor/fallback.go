package advisor

import (
	"context"
	"strings"
	"time"

	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/metrics"
	"go.uber.org/zap"
)

// FallbackAdvisor asks a primary advisor first and falls back to the local
// rules when it fails, times out or returns blank text. A nil primary means
// rules only.
type FallbackAdvisor struct {
	primary Advisor
	timeout time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewFallbackAdvisor(primary Advisor, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *FallbackAdvisor {
	return &FallbackAdvisor{
		primary: primary,
		timeout: timeout,
		metrics: m,
		log:     log,
	}
}

// Recommend always returns non-blank advice.
func (f *FallbackAdvisor) Recommend(ctx context.Context, p *entity.QueryPattern) Advice {
	if f.primary != nil {
		text, err := f.ask(ctx, p)
		if err == nil {
			return Advice{Text: text, Source: SourceRemote}
		}

		f.log.Warn("advisor failed, using rules",
			zap.String("pattern_id", p.PatternID),
			zap.Error(err),
		)
		if f.metrics != nil {
			f.metrics.AdvisoryFallbacks.Inc()
		}
	}

	return Advice{Text: Recommend(p), Source: SourceRules}
}

type result struct {
	text string
	err  error
}

// ask runs the primary advisor in its own goroutine so a collaborator that
// ignores ctx cannot hold up the report.
func (f *FallbackAdvisor) ask(ctx context.Context, p *entity.QueryPattern) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: errwrap.Wrapf(ErrUnavailable, "panic: %v", r)}
			}
		}()
		text, err := f.primary.Advise(ctx, p)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return "", errwrap.Wrap(ErrUnavailable, ctx.Err().Error())
	}

	if res.err != nil {
		if errwrap.Is(res.err, ErrUnavailable) {
			return "", res.err
		}
		return "", errwrap.Wrap(ErrUnavailable, res.err.Error())
	}
	text := strings.TrimSpace(res.text)
	if text == "" {
		return "", errwrap.Wrap(ErrUnavailable, "blank advice")
	}
	return text, nil
}
