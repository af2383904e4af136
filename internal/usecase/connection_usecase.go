package usecase

import (
	"context"
	"time"

	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"github.com/rahmatrdn/go-query-insight/internal/repository/clickhouse"
	"github.com/rahmatrdn/go-query-insight/internal/repository/sqlite"
)

var (
	ErrConnectionNotFound    = errwrap.New("connection not found")
	ErrConnectionUnreachable = errwrap.New("connection unreachable")
)

type ConnectionUsecase struct {
	repo       sqlite.ConnectionRepository
	reportRepo sqlite.ReportRepository
	chClient   clickhouse.ClickHouseClient
	validator  *helper.Validator
}

func NewConnectionUsecase(repo sqlite.ConnectionRepository, reportRepo sqlite.ReportRepository, chClient clickhouse.ClickHouseClient, validator *helper.Validator) *ConnectionUsecase {
	return &ConnectionUsecase{
		repo:       repo,
		reportRepo: reportRepo,
		chClient:   chClient,
		validator:  validator,
	}
}

func (u *ConnectionUsecase) CreateConnection(ctx context.Context, conn *entity.CHConnection) error {
	if err := u.validator.Validate(conn); err != nil {
		return err
	}

	conn.CreatedAt = time.Now()
	conn.UpdatedAt = time.Now()

	if err := u.chClient.Ping(ctx, conn); err != nil {
		return errwrap.Wrap(ErrConnectionUnreachable, err.Error())
	}

	info, err := u.chClient.GetServerInfo(ctx, conn)
	if err == nil {
		conn.ServerInfo = info
	}

	return u.repo.Create(ctx, conn)
}

func (u *ConnectionUsecase) UpdateConnection(ctx context.Context, id int64, conn *entity.CHConnection) error {
	if err := u.validator.Validate(conn); err != nil {
		return err
	}

	existing, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrConnectionNotFound
	}

	conn.ID = id
	conn.UpdatedAt = time.Now()
	conn.CreatedAt = existing.CreatedAt
	if conn.Password == "" {
		conn.Password = existing.Password
	}

	// Check the new settings on a throwaway handle; the cached one keeps
	// serving the saved settings until the update is stored.
	candidate := *conn
	candidate.ID = 0

	if err := u.chClient.Ping(ctx, &candidate); err != nil {
		return errwrap.Wrap(ErrConnectionUnreachable, err.Error())
	}

	info, err := u.chClient.GetServerInfo(ctx, &candidate)
	if err == nil {
		conn.ServerInfo = info
	}

	if err := u.repo.Update(ctx, conn); err != nil {
		return err
	}
	u.chClient.Forget(id)
	return nil
}

func (u *ConnectionUsecase) GetAllConnections(ctx context.Context) ([]*entity.CHConnection, error) {
	return u.repo.FindAll(ctx)
}

func (u *ConnectionUsecase) GetConnection(ctx context.Context, id int64) (*entity.CHConnection, error) {
	conn, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrConnectionNotFound
	}
	return conn, nil
}

func (u *ConnectionUsecase) GetConnectionStatus(ctx context.Context, id int64) (string, error) {
	conn, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return "Error", err
	}
	if conn == nil {
		return "Not Found", nil
	}

	if err := u.chClient.Ping(ctx, conn); err != nil {
		return "Offline", nil
	}
	return "Online", nil
}

// DeleteConnection removes the connection together with its report snapshot.
func (u *ConnectionUsecase) DeleteConnection(ctx context.Context, id int64) error {
	conn, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if conn == nil {
		return ErrConnectionNotFound
	}

	if err := u.reportRepo.DeleteByConnectionID(ctx, id); err != nil {
		return err
	}
	u.chClient.Forget(id)
	return u.repo.Delete(ctx, id)
}
