package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockClient(t *testing.T) (*clientImpl, sqlmock.Sqlmock, *int) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opens := 0
	client := NewClickHouseClientWithOpener(func(*entity.CHConnection) (*sql.DB, error) {
		opens++
		return db, nil
	}, zap.NewNop()).(*clientImpl)

	return client, mock, &opens
}

func TestFetchQueryLog(t *testing.T) {
	client, mock, opens := newMockClient(t)
	conn := &entity.CHConnection{ID: 7, Host: "localhost", Port: 9000}
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts := since.Add(time.Minute)

	rows := sqlmock.NewRows([]string{"query_id", "event_time", "query", "query_duration_ms", "user", "client_address", "current_database"}).
		AddRow("q1", ts, "SELECT * FROM meters WHERE ts > NOW - 10d", uint64(500), "a", "::ffff:10.0.0.1", "power").
		AddRow("q2", ts.Add(time.Second), "SELECT * FROM meters WHERE ts > NOW - 25d", uint64(700), "b", "::ffff:10.0.0.2", "power")

	mock.ExpectQuery(`FROM system.query_log`).
		WithArgs(since, int64(100), 500).
		WillReturnRows(rows)

	records, err := client.FetchQueryLog(context.Background(), conn, QueryLogFilter{Since: since, MinDurationMs: 100, Limit: 500})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, entity.RawQueryRecord{
		ID:            "q1",
		ConnectionID:  7,
		Timestamp:     ts,
		SQLText:       "SELECT * FROM meters WHERE ts > NOW - 10d",
		DurationMs:    500,
		User:          "a",
		ClientAddress: "::ffff:10.0.0.1",
		Database:      "power",
	}, records[0])
	assert.Equal(t, int64(700), records[1].DurationMs)

	// The handle is cached per connection.
	mock.ExpectQuery(`FROM system.query_log`).WillReturnRows(sqlmock.NewRows([]string{"query_id"}))
	_, _ = client.FetchQueryLog(context.Background(), conn, QueryLogFilter{Since: since, Limit: 1})
	assert.Equal(t, 1, *opens)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchQueryLogQueryError(t *testing.T) {
	client, mock, _ := newMockClient(t)

	mock.ExpectQuery(`FROM system.query_log`).WillReturnError(errors.New("table is not readable"))

	_, err := client.FetchQueryLog(context.Background(), &entity.CHConnection{ID: 1}, QueryLogFilter{Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ClickHouseClient.FetchQueryLog")
}

func TestFetchQueryLogCancelled(t *testing.T) {
	client, _, opens := newMockClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchQueryLog(ctx, &entity.CHConnection{ID: 1}, QueryLogFilter{Limit: 10})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, *opens)
}

func TestPingAndServerInfo(t *testing.T) {
	client, mock, _ := newMockClient(t)
	conn := &entity.CHConnection{ID: 3}

	mock.ExpectPing()
	require.NoError(t, client.Ping(context.Background(), conn))

	mock.ExpectQuery(`SELECT version\(\), timezone\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "timezone"}).AddRow("24.3.1", "UTC"))
	info, err := client.GetServerInfo(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, "ClickHouse 24.3.1 (UTC)", info)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()
	assert.Error(t, client.Ping(context.Background(), conn))
	assert.Empty(t, client.conns)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForget(t *testing.T) {
	client, mock, opens := newMockClient(t)
	conn := &entity.CHConnection{ID: 9}

	mock.ExpectPing()
	require.NoError(t, client.Ping(context.Background(), conn))
	assert.Len(t, client.conns, 1)

	mock.ExpectClose()
	client.Forget(9)
	assert.Empty(t, client.conns)
	assert.Equal(t, 1, *opens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailedPingDropsCachedHandle(t *testing.T) {
	var hosts []string
	client := NewClickHouseClientWithOpener(func(conn *entity.CHConnection) (*sql.DB, error) {
		hosts = append(hosts, conn.Host)

		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		if conn.Host == "typo-host" {
			mock.ExpectPing().WillReturnError(errors.New("lookup typo-host: no such host"))
		} else {
			mock.ExpectPing()
		}
		return db, nil
	}, zap.NewNop()).(*clientImpl)

	ctx := context.Background()
	require.Error(t, client.Ping(ctx, &entity.CHConnection{ID: 1, Host: "typo-host"}))
	assert.Empty(t, client.conns)

	require.NoError(t, client.Ping(ctx, &entity.CHConnection{ID: 1, Host: "good-host"}))
	assert.Equal(t, []string{"typo-host", "good-host"}, hosts)
	assert.Len(t, client.conns, 1)
}
