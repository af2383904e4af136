package sqlite

import (
	"context"

	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/helper"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRepository keeps one ranked snapshot per connection: a run marker and
// its rows.
type ReportRepository interface {
	// GetSnapshot returns a nil run when the connection was never refreshed.
	GetSnapshot(ctx context.Context, connectionID int64) (*entity.ReportRun, []*entity.SlowQueryReport, error)
	SaveSnapshot(ctx context.Context, run *entity.ReportRun, reports []*entity.SlowQueryReport) error
	DeleteByConnectionID(ctx context.Context, connectionID int64) error
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) GetSnapshot(ctx context.Context, connectionID int64) (*entity.ReportRun, []*entity.SlowQueryReport, error) {
	funcName := "ReportRepository.GetSnapshot"
	if err := helper.CheckDeadline(ctx); err != nil {
		return nil, nil, errwrap.Wrap(err, funcName)
	}

	var runs []entity.ReportRun
	if err := r.db.WithContext(ctx).Where("connection_id = ?", connectionID).Limit(1).Find(&runs).Error; err != nil {
		return nil, nil, errwrap.Wrap(err, funcName)
	}
	if len(runs) == 0 {
		return nil, nil, nil
	}
	run := runs[0]

	reports := []*entity.SlowQueryReport{}
	err := r.db.WithContext(ctx).
		Where("connection_id = ? AND run_id = ?", connectionID, run.RunID).
		Order("rank asc").
		Find(&reports).Error
	if err != nil {
		return nil, nil, errwrap.Wrap(err, funcName)
	}
	return &run, reports, nil
}

// SaveSnapshot swaps the previous snapshot of run.ConnectionID for this one
// atomically.
func (r *reportRepo) SaveSnapshot(ctx context.Context, run *entity.ReportRun, reports []*entity.SlowQueryReport) error {
	funcName := "ReportRepository.SaveSnapshot"
	if err := helper.CheckDeadline(ctx); err != nil {
		return errwrap.Wrap(err, funcName)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("connection_id = ?", run.ConnectionID).Delete(&entity.SlowQueryReport{}).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(run).Error; err != nil {
			return err
		}
		if len(reports) == 0 {
			return nil
		}
		return tx.Create(reports).Error
	})
	if err != nil {
		return errwrap.Wrap(err, funcName)
	}
	return nil
}

func (r *reportRepo) DeleteByConnectionID(ctx context.Context, connectionID int64) error {
	funcName := "ReportRepository.DeleteByConnectionID"
	if err := helper.CheckDeadline(ctx); err != nil {
		return errwrap.Wrap(err, funcName)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("connection_id = ?", connectionID).Delete(&entity.SlowQueryReport{}).Error; err != nil {
			return err
		}
		return tx.Where("connection_id = ?", connectionID).Delete(&entity.ReportRun{}).Error
	})
	if err != nil {
		return errwrap.Wrap(err, funcName)
	}
	return nil
}
