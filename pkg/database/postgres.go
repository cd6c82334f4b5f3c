package database

import (
	"fmt"
	"promoMarket/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitPostgres opens the GORM connection. TranslateError is on so the
// repositories can detect duplicate-key inserts via gorm.ErrDuplicatedKey.
func InitPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	return db, nil
}
