// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	authadapters "auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/config"
	"auth_backend/internal/platform/db"
)

// NewUserRepository creates a UserRepository implementation for cfg.DBDriver.
// The memory driver returns a nil *gorm.DB; any other driver opens the database
// through db.Open and returns the handle so the caller can close it and probe it.
func NewUserRepository(cfg config.Config) (usecase.UserRepository, *gorm.DB, error) {
	if cfg.DBDriver == config.DriverMemory {
		slog.Warn("using in-memory user store; data is lost on restart")
		return authadapters.NewUserMemory(), nil, nil
	}

	gdb, err := db.Open(db.OptionsFromConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("open user store: %w", err)
	}
	return authadapters.NewUserGorm(gdb), gdb, nil
}
