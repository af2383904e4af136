package usecase

import (
	"context"
	"time"

	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/repository/clickhouse"
	"github.com/stretchr/testify/mock"
)

type mockConnectionRepo struct{ mock.Mock }

func (m *mockConnectionRepo) Create(ctx context.Context, conn *entity.CHConnection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *mockConnectionRepo) Update(ctx context.Context, conn *entity.CHConnection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *mockConnectionRepo) FindAll(ctx context.Context) ([]*entity.CHConnection, error) {
	args := m.Called(ctx)
	conns, _ := args.Get(0).([]*entity.CHConnection)
	return conns, args.Error(1)
}

func (m *mockConnectionRepo) FindByID(ctx context.Context, id int64) (*entity.CHConnection, error) {
	args := m.Called(ctx, id)
	conn, _ := args.Get(0).(*entity.CHConnection)
	return conn, args.Error(1)
}

func (m *mockConnectionRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockReportRepo struct {
	mock.Mock
	lastRun *entity.ReportRun
}

func (m *mockReportRepo) GetSnapshot(ctx context.Context, connectionID int64) (*entity.ReportRun, []*entity.SlowQueryReport, error) {
	args := m.Called(ctx, connectionID)
	run, _ := args.Get(0).(*entity.ReportRun)
	reports, _ := args.Get(1).([]*entity.SlowQueryReport)
	return run, reports, args.Error(2)
}

// SaveSnapshot matches on the run's connection ID and keeps the run for
// inspection.
func (m *mockReportRepo) SaveSnapshot(ctx context.Context, run *entity.ReportRun, reports []*entity.SlowQueryReport) error {
	m.lastRun = run
	return m.Called(ctx, run.ConnectionID, reports).Error(0)
}

func (m *mockReportRepo) DeleteByConnectionID(ctx context.Context, connectionID int64) error {
	return m.Called(ctx, connectionID).Error(0)
}

type mockRecordRepo struct{ mock.Mock }

func (m *mockRecordRepo) CreateBatch(ctx context.Context, records []entity.RawQueryRecord) error {
	return m.Called(ctx, records).Error(0)
}

func (m *mockRecordRepo) FindByConnectionID(ctx context.Context, connectionID int64, since time.Time, limit int) ([]entity.RawQueryRecord, error) {
	args := m.Called(ctx, connectionID, since, limit)
	records, _ := args.Get(0).([]entity.RawQueryRecord)
	return records, args.Error(1)
}

func (m *mockRecordRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockClickHouse struct{ mock.Mock }

func (m *mockClickHouse) Ping(ctx context.Context, conn *entity.CHConnection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *mockClickHouse) GetServerInfo(ctx context.Context, conn *entity.CHConnection) (string, error) {
	args := m.Called(ctx, conn)
	return args.String(0), args.Error(1)
}

func (m *mockClickHouse) FetchQueryLog(ctx context.Context, conn *entity.CHConnection, filter clickhouse.QueryLogFilter) ([]entity.RawQueryRecord, error) {
	args := m.Called(ctx, conn, filter)
	records, _ := args.Get(0).([]entity.RawQueryRecord)
	return records, args.Error(1)
}

func (m *mockClickHouse) Forget(connectionID int64) {
	m.Called(connectionID)
}

func (m *mockClickHouse) Close() error {
	return m.Called().Error(0)
}
