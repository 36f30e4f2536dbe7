package database

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var memCounter atomic.Int64

// OpenMemory opens a private, migrated in-memory sqlite database.
// Every call gets its own database; it is used by tests and local demos.
func OpenMemory() (*gorm.DB, error) {
	name := fmt.Sprintf("file:scanorder%d?mode=memory&cache=shared", memCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
