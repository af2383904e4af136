package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"go.uber.org/zap"
)

// ClickHouseClient reads from a registered ClickHouse server.
type ClickHouseClient interface {
	Ping(ctx context.Context, conn *entity.CHConnection) error
	GetServerInfo(ctx context.Context, conn *entity.CHConnection) (string, error)
	FetchQueryLog(ctx context.Context, conn *entity.CHConnection, filter QueryLogFilter) ([]entity.RawQueryRecord, error)
	Forget(connectionID int64)
	Close() error
}

// Opener turns a connection config into a database handle.
type Opener func(conn *entity.CHConnection) (*sql.DB, error)

type clientImpl struct {
	open Opener
	log  *zap.Logger

	mu    sync.Mutex
	conns map[int64]*sql.DB
}

func NewClickHouseClient(log *zap.Logger) ClickHouseClient {
	return NewClickHouseClientWithOpener(OpenDB, log)
}

func NewClickHouseClientWithOpener(open Opener, log *zap.Logger) ClickHouseClient {
	return &clientImpl{
		open:  open,
		log:   log,
		conns: make(map[int64]*sql.DB),
	}
}

// OpenDB opens a database/sql handle over the native or HTTP protocol.
func OpenDB(conn *entity.CHConnection) (*sql.DB, error) {
	protocol := clickhouse.Native
	if conn.Protocol == "http" {
		protocol = clickhouse.HTTP
	}

	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", conn.Host, conn.Port)},
		Protocol: protocol,
		Auth: clickhouse.Auth{
			Database: conn.Database,
			Username: conn.Username,
			Password: conn.Password,
		},
		DialTimeout: 5 * time.Second,
		ReadTimeout: 60 * time.Second,
	})
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// getConnection returns the cached handle for a saved connection. Unsaved
// connections (ID 0) get a fresh handle that is not cached.
func (c *clientImpl) getConnection(conn *entity.CHConnection) (*sql.DB, error) {
	if conn.ID == 0 {
		return c.open(conn)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if db, ok := c.conns[conn.ID]; ok {
		return db, nil
	}

	db, err := c.open(conn)
	if err != nil {
		return nil, err
	}
	c.conns[conn.ID] = db
	return db, nil
}

func (c *clientImpl) release(conn *entity.CHConnection, db *sql.DB) {
	if conn.ID == 0 {
		_ = db.Close()
	}
}

// Forget closes and drops the cached handle of a connection, e.g. after its
// settings changed.
func (c *clientImpl) Forget(connectionID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if db, ok := c.conns[connectionID]; ok {
		_ = db.Close()
		delete(c.conns, connectionID)
	}
}

func (c *clientImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for id, db := range c.conns {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.conns, id)
	}
	return firstErr
}

func (c *clientImpl) Ping(ctx context.Context, conn *entity.CHConnection) error {
	funcName := "ClickHouseClient.Ping"
	if err := helper.CheckDeadline(ctx); err != nil {
		return errwrap.Wrap(err, funcName)
	}

	db, err := c.getConnection(conn)
	if err != nil {
		return errwrap.Wrap(err, funcName)
	}
	defer c.release(conn, db)

	if err := db.PingContext(ctx); err != nil {
		// A handle that cannot reach its server is not worth keeping.
		if conn.ID != 0 {
			c.Forget(conn.ID)
		}
		return errwrap.Wrap(err, funcName)
	}
	return nil
}

func (c *clientImpl) GetServerInfo(ctx context.Context, conn *entity.CHConnection) (string, error) {
	funcName := "ClickHouseClient.GetServerInfo"
	if err := helper.CheckDeadline(ctx); err != nil {
		return "", errwrap.Wrap(err, funcName)
	}

	db, err := c.getConnection(conn)
	if err != nil {
		return "", errwrap.Wrap(err, funcName)
	}
	defer c.release(conn, db)

	var version, timezone string
	if err := db.QueryRowContext(ctx, "SELECT version(), timezone()").Scan(&version, &timezone); err != nil {
		return "", errwrap.Wrap(err, funcName)
	}
	return fmt.Sprintf("ClickHouse %s (%s)", version, timezone), nil
}
