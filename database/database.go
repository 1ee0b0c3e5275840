package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cafestaff/config"
	"cafestaff/logger"
	"cafestaff/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Open connects to the configured store and pings it. The caller owns the handle and
// must Close it on shutdown.
func Open(opts config.DatabaseOptions, log *logger.Logger, level gormLogger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(opts.Driver) {
	case config.DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	case config.DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.New(gormWriter{log: log}, gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if strings.EqualFold(opts.Driver, config.DriverSQLite) {
		// SQLite serialises writers; one connection keeps transactions from
		// tripping over "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// InTx runs fn inside a transaction. Any error returned by fn, or a panic, rolls the
// whole unit back; otherwise the transaction is committed.
func InTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.SugaredLogger.Debugf(format, args...)
}
