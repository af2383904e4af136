package sqlite

import (
	"context"

	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"gorm.io/gorm"
)

type ConnectionRepository interface {
	Create(ctx context.Context, conn *entity.CHConnection) error
	Update(ctx context.Context, conn *entity.CHConnection) error
	FindAll(ctx context.Context) ([]*entity.CHConnection, error)
	FindByID(ctx context.Context, id int64) (*entity.CHConnection, error)
	Delete(ctx context.Context, id int64) error
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, conn *entity.CHConnection) error {
	funcName := "ConnectionRepository.Create"
	if err := helper.CheckDeadline(ctx); err != nil {
		return errwrap.Wrap(err, funcName)
	}

	return r.db.WithContext(ctx).Create(conn).Error
}

func (r *connectionRepository) Update(ctx context.Context, conn *entity.CHConnection) error {
	funcName := "ConnectionRepository.Update"
	if err := helper.CheckDeadline(ctx); err != nil {
		return errwrap.Wrap(err, funcName)
	}

	return r.db.WithContext(ctx).Save(conn).Error
}

func (r *connectionRepository) FindAll(ctx context.Context) ([]*entity.CHConnection, error) {
	funcName := "ConnectionRepository.FindAll"
	if err := helper.CheckDeadline(ctx); err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}

	var conns []*entity.CHConnection
	err := r.db.WithContext(ctx).
		Order("name asc").
		Find(&conns).Error

	if err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}
	return conns, nil
}

func (r *connectionRepository) FindByID(ctx context.Context, id int64) (*entity.CHConnection, error) {
	funcName := "ConnectionRepository.FindByID"
	if err := helper.CheckDeadline(ctx); err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}

	var conn entity.CHConnection
	err := r.db.WithContext(ctx).
		First(&conn, id).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errwrap.Wrap(err, funcName)
	}
	return &conn, nil
}

func (r *connectionRepository) Delete(ctx context.Context, id int64) error {
	funcName := "ConnectionRepository.Delete"
	if err := helper.CheckDeadline(ctx); err != nil {
		return errwrap.Wrap(err, funcName)
	}

	return r.db.WithContext(ctx).Delete(&entity.CHConnection{}, id).Error
}
