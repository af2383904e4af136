package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/advisor"
	"github.com/rahmatrdn/go-query-insight/internal/analyzer"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"github.com/rahmatrdn/go-query-insight/internal/metrics"
	"github.com/rahmatrdn/go-query-insight/internal/repository/clickhouse"
	"github.com/rahmatrdn/go-query-insight/internal/repository/sqlite"
	"go.uber.org/zap"
)

type ReportUsecase interface {
	GetTopSlowQueries(ctx context.Context, connectionID int64, forceRefresh bool) ([]*entity.SlowQueryReport, *time.Time, error)
	RefreshAll(ctx context.Context) error
	AnalyzeRecords(ctx context.Context, records []entity.RawQueryRecord, top int) (*AnalysisResult, error)
}

// Recommender attaches advice to a ranked pattern and never returns blank text.
type Recommender interface {
	Recommend(ctx context.Context, p *entity.QueryPattern) advisor.Advice
}

type ReportOptions struct {
	Window           time.Duration
	TopN             int
	MinDurationMs    int64
	QueryLogLimit    int
	AggregateWorkers int
}

// PatternSummary is a ranked pattern with its advice.
type PatternSummary struct {
	Rank int `json:"rank"`
	*entity.QueryPattern
	Advice advisor.Advice `json:"advice"`
}

type AnalysisResult struct {
	RunID        string           `json:"run_id"`
	TotalRecords int              `json:"total_records"`
	PatternCount int              `json:"pattern_count"`
	Patterns     []PatternSummary `json:"patterns"`
}

// InvalidRecordsError lists validation problems by input position.
type InvalidRecordsError struct {
	Problems map[int][]string
}

func (e *InvalidRecordsError) Error() string {
	return fmt.Sprintf("%d invalid records", len(e.Problems))
}

type reportUsecase struct {
	reportRepo     sqlite.ReportRepository
	connectionRepo sqlite.ConnectionRepository
	recordRepo     sqlite.RecordRepository
	chClient       clickhouse.ClickHouseClient
	recommender    Recommender
	validator      *helper.Validator
	metrics        *metrics.Metrics
	log            *zap.Logger
	opts           ReportOptions
	now            func() time.Time
}

func NewReportUsecase(
	reportRepo sqlite.ReportRepository,
	connectionRepo sqlite.ConnectionRepository,
	recordRepo sqlite.RecordRepository,
	chClient clickhouse.ClickHouseClient,
	recommender Recommender,
	validator *helper.Validator,
	m *metrics.Metrics,
	log *zap.Logger,
	opts ReportOptions,
) ReportUsecase {
	return &reportUsecase{
		reportRepo:     reportRepo,
		connectionRepo: connectionRepo,
		recordRepo:     recordRepo,
		chClient:       chClient,
		recommender:    recommender,
		validator:      validator,
		metrics:        m,
		log:            log,
		opts:           opts,
		now:            time.Now,
	}
}

func (u *reportUsecase) GetTopSlowQueries(ctx context.Context, connectionID int64, forceRefresh bool) ([]*entity.SlowQueryReport, *time.Time, error) {
	// 1. Serve the stored snapshot unless a refresh is forced
	if !forceRefresh {
		run, existing, err := u.reportRepo.GetSnapshot(ctx, connectionID)
		if err != nil {
			return nil, nil, err
		}
		if run != nil {
			lastRef := run.LastRefresh
			return existing, &lastRef, nil
		}
	}

	// 2. Fetch Connection Config
	conn, err := u.connectionRepo.FindByID(ctx, connectionID)
	if err != nil {
		return nil, nil, err
	}
	if conn == nil {
		return nil, nil, ErrConnectionNotFound
	}

	// 3. Collect raw records from query_log and from pushed records
	records, err := u.collectRecords(ctx, conn)
	if err != nil {
		return nil, nil, err
	}

	// 4. Fingerprint, aggregate, rank
	result, err := u.analyze(ctx, records, u.opts.TopN, "refresh")
	if err != nil {
		return nil, nil, err
	}

	// 5. Map to report rows
	now := u.now()
	reports := make([]*entity.SlowQueryReport, 0, len(result.Patterns))
	for _, p := range result.Patterns {
		reports = append(reports, &entity.SlowQueryReport{
			ConnectionID:      connectionID,
			RunID:             result.RunID,
			Rank:              p.Rank,
			PatternID:         p.PatternID,
			Fingerprint:       p.Fingerprint,
			ExampleSQL:        p.ExampleSQL,
			OccurrenceCount:   p.OccurrenceCount,
			TotalDurationMs:   p.TotalDurationMs,
			AverageDurationMs: p.AverageDurationMs,
			MaxDurationMs:     p.MaxDurationMs,
			Users:             p.UsersHistogram,
			Clients:           p.ClientsHistogram,
			Advice:            p.Advice.Text,
			AdviceSource:      p.Advice.Source,
			LastRefresh:       now,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	// 6. Save to SQLite
	run := &entity.ReportRun{
		ConnectionID: connectionID,
		RunID:        result.RunID,
		TotalRecords: result.TotalRecords,
		PatternCount: result.PatternCount,
		LastRefresh:  now,
	}
	if err := u.reportRepo.SaveSnapshot(ctx, run, reports); err != nil {
		return nil, nil, err
	}

	u.log.Info("slow query report refreshed",
		zap.Int64("connection_id", connectionID),
		zap.String("run_id", result.RunID),
		zap.Int("records", result.TotalRecords),
		zap.Int("patterns", result.PatternCount),
	)

	return reports, &now, nil
}

// RefreshAll rebuilds the snapshot of every connection. A failing connection
// is logged and does not stop the others.
func (u *reportUsecase) RefreshAll(ctx context.Context) error {
	conns, err := u.connectionRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	for _, conn := range conns {
		if _, _, err := u.GetTopSlowQueries(ctx, conn.ID, true); err != nil {
			u.log.Error("failed to refresh slow query report",
				zap.Int64("connection_id", conn.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// AnalyzeRecords ranks the given records without persisting anything. Records
// failing validation reject the whole request.
func (u *reportUsecase) AnalyzeRecords(ctx context.Context, records []entity.RawQueryRecord, top int) (*AnalysisResult, error) {
	problems := make(map[int][]string)
	for i := range records {
		if msgs := u.validator.Struct(records[i]); len(msgs) > 0 {
			problems[i] = msgs
		}
	}
	if len(problems) > 0 {
		u.metrics.RecordsRejected.WithLabelValues("api").Add(float64(len(problems)))
		return nil, &InvalidRecordsError{Problems: problems}
	}

	if top <= 0 {
		top = u.opts.TopN
	}
	return u.analyze(ctx, records, top, "api")
}

// collectRecords merges query_log rows with pushed records in execution order.
// A failing query_log read is tolerated when pushed records exist.
func (u *reportUsecase) collectRecords(ctx context.Context, conn *entity.CHConnection) ([]entity.RawQueryRecord, error) {
	since := u.now().Add(-u.opts.Window)

	pulled, pullErr := u.chClient.FetchQueryLog(ctx, conn, clickhouse.QueryLogFilter{
		Since:         since,
		MinDurationMs: u.opts.MinDurationMs,
		Limit:         u.opts.QueryLogLimit,
	})
	if pullErr != nil {
		u.log.Warn("failed to read query_log",
			zap.Int64("connection_id", conn.ID),
			zap.Error(pullErr),
		)
	}

	pushed, err := u.recordRepo.FindByConnectionID(ctx, conn.ID, since, u.opts.QueryLogLimit)
	if err != nil {
		return nil, err
	}
	if pullErr != nil && len(pushed) == 0 {
		return nil, pullErr
	}

	records := make([]entity.RawQueryRecord, 0, len(pulled)+len(pushed))
	records = append(records, u.keepValid(pulled, "pull")...)
	for _, r := range u.keepValid(pushed, "push") {
		if r.DurationMs >= u.opts.MinDurationMs {
			records = append(records, r)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func (u *reportUsecase) keepValid(records []entity.RawQueryRecord, origin string) []entity.RawQueryRecord {
	valid := make([]entity.RawQueryRecord, 0, len(records))
	for _, r := range records {
		if msgs := u.validator.Struct(r); len(msgs) > 0 {
			u.metrics.RecordsRejected.WithLabelValues(origin).Inc()
			u.log.Debug("dropping invalid record",
				zap.String("record_id", r.ID),
				zap.Strings("problems", msgs),
			)
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

func (u *reportUsecase) analyze(ctx context.Context, records []entity.RawQueryRecord, top int, trigger string) (*AnalysisResult, error) {
	start := time.Now()
	defer func() {
		u.metrics.AnalysisDuration.WithLabelValues(trigger).Observe(time.Since(start).Seconds())
	}()

	patterns, err := analyzer.AggregateParallel(ctx, records, u.opts.AggregateWorkers)
	if err != nil {
		return nil, err
	}
	u.metrics.RecordsAnalyzed.Add(float64(len(records)))
	u.metrics.PatternsProduced.Observe(float64(len(patterns)))

	ranked := analyzer.Top(analyzer.RankByImpact(patterns), top)

	result := &AnalysisResult{
		RunID:        uuid.NewString(),
		TotalRecords: len(records),
		PatternCount: len(patterns),
		Patterns:     make([]PatternSummary, 0, len(ranked)),
	}
	for i, p := range ranked {
		result.Patterns = append(result.Patterns, PatternSummary{
			Rank:         i + 1,
			QueryPattern: p,
			Advice:       u.recommender.Recommend(ctx, p),
		})
	}
	return result, nil
}
