package sqlite

import (
	errwrap "github.com/pkg/errors"
	"github.com/rahmatrdn/go-query-insight/entity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the local database at path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	funcName := "sqlite.Open"

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}

	if err := db.AutoMigrate(&entity.CHConnection{}, &entity.RawQueryRecord{}, &entity.SlowQueryReport{}, &entity.ReportRun{}); err != nil {
		return nil, errwrap.Wrap(err, funcName)
	}
	return db, nil
}
