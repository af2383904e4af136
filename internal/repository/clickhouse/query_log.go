package clickhouse

import (
	"context"
	"time"

	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"go.uber.org/zap"
)

const defaultQueryLogLimit = 10000

// QueryLogFilter bounds a read of system.query_log. A Limit of 0 means
// defaultQueryLogLimit.
type QueryLogFilter struct {
	Since         time.Time
	MinDurationMs int64
	Limit         int
}

// Finished initial queries only; rows come back in execution order so the
// first record of a fingerprint is the one that ran first.
const queryLogSQL = `
SELECT
    query_id,
    event_time,
    query,
    query_duration_ms,
    user,
    toString(address)  AS client_address,
    current_database
FROM system.query_log
WHERE
    event_time >= ?
    AND type = 'QueryFinish'
    AND is_initial_query = 1
    AND query_duration_ms >= ?
ORDER BY event_time, query_id
LIMIT ?`

func (c *clientImpl) FetchQueryLog(ctx context.Context, conn *entity.CHConnection, filter QueryLogFilter) ([]entity.RawQueryRecord, error) {
	funcName := "ClickHouseClient.FetchQueryLog"
	if err := helper.CheckDeadline(ctx); err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}

	db, err := c.getConnection(conn)
	if err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}
	defer c.release(conn, db)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLogLimit
	}

	rows, err := db.QueryContext(ctx, queryLogSQL, filter.Since, filter.MinDurationMs, limit)
	if err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}
	defer rows.Close()

	var records []entity.RawQueryRecord
	skipped := 0
	for rows.Next() {
		var r entity.RawQueryRecord
		var duration uint64
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.SQLText, &duration, &r.User, &r.ClientAddress, &r.Database); err != nil {
			skipped++
			continue
		}
		r.ConnectionID = conn.ID
		r.DurationMs = int64(duration)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}

	if skipped > 0 {
		c.log.Warn("skipped unreadable query_log rows",
			zap.Int64("connection_id", conn.ID),
			zap.Int("skipped", skipped),
		)
	}
	return records, nil
}
