package sqlite

import (
	"context"
	"time"

	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository stores raw query records pushed by external log shippers.
type RecordRepository interface {
	CreateBatch(ctx context.Context, records []entity.RawQueryRecord) error
	FindByConnectionID(ctx context.Context, connectionID int64, since time.Time, limit int) ([]entity.RawQueryRecord, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type RecordRepo struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// CreateBatch inserts records; a record whose ID already exists is skipped so
// redelivered messages are harmless.
func (r *RecordRepo) CreateBatch(ctx context.Context, records []entity.RawQueryRecord) error {
	funcName := "RecordRepository.CreateBatch"
	if err := helper.CheckDeadline(ctx); err != nil {
		return errwrap.Wrap(err, funcName)
	}
	if len(records) == 0 {
		return nil
	}

	// Times are stored as text, so one zone keeps range filters comparable.
	rows := make([]entity.RawQueryRecord, len(records))
	for i, rec := range records {
		rec.Timestamp = rec.Timestamp.UTC()
		rows[i] = rec
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, 200).Error
	if err != nil {
		return errwrap.Wrap(err, funcName)
	}
	return nil
}

// FindByConnectionID returns records in execution order, oldest first.
func (r *RecordRepo) FindByConnectionID(ctx context.Context, connectionID int64, since time.Time, limit int) ([]entity.RawQueryRecord, error) {
	funcName := "RecordRepository.FindByConnectionID"
	if err := helper.CheckDeadline(ctx); err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}

	q := r.db.WithContext(ctx).
		Where("connection_id = ? AND timestamp >= ?", connectionID, since.UTC()).
		Order("timestamp asc, id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var records []entity.RawQueryRecord
	err := q.Find(&records).Error

	if err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}
	return records, nil
}

// Prune deletes records that executed before the cutoff and reports how many
// were removed.
func (r *RecordRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	funcName := "RecordRepository.Prune"
	if err := helper.CheckDeadline(ctx); err != nil {
		return 0, errwrap.Wrap(err, funcName)
	}

	res := r.db.WithContext(ctx).
		Where("timestamp < ?", before.UTC()).
		Delete(&entity.RawQueryRecord{})
	if res.Error != nil {
		return 0, errwrap.Wrap(res.Error, funcName)
	}
	return res.RowsAffected, nil
}
