// Package db opens the relational store behind the credential repository.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/platform/config"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Options controls how Open connects.
type Options struct {
	Driver         string
	DSN            string
	RunMigrations  bool
	ConnectTimeout time.Duration
}

// OptionsFromConfig maps the runtime config onto Options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Driver:         cfg.DBDriver,
		DSN:            cfg.DatabaseURL,
		RunMigrations:  cfg.RunMigrations,
		ConnectTimeout: cfg.DBConnectTimeout,
	}
}

// Open connects to the configured database, retrying until ConnectTimeout
// elapses, and migrates the users table when RunMigrations is set.
func Open(opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{
		// 一意制約違反をgorm.ErrDuplicatedKeyに変換する
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}

	var db *gorm.DB
	deadline := time.Now().Add(opts.ConnectTimeout)
	for {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", opts.ConnectTimeout, err)
		}
		slog.Warn("db connect failed, retrying", "driver", opts.Driver, "error", err)
		time.Sleep(retryInterval)
	}

	if opts.RunMigrations {
		if err := db.AutoMigrate(&adapters.UserModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	slog.Info("db connection successful", "driver", opts.Driver)
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

// Ping checks that the underlying connection pool is reachable.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
