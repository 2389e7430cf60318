package infra

import (
	"fmt"

	"novacrm/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// for all models. The ledger tables (stock_movements, price_history) are
// append-only by convention — no code path issues UPDATE or DELETE on them.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Shared with integration tests so they run
// against the exact production schema.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Category{},
		&model.Subcategory{},
		&model.Product{},
		&model.StockMovement{},
		&model.PriceHistory{},
		&model.StockAlert{},
		&model.StockRecommendation{},
		&model.Order{},
		&model.OrderItem{},
		&model.BulkPriceUpdate{},
	)
}
