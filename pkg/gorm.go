package pkg

import (
	"fmt"

	"github.com/storefront-ops/import-service/internal/config"
	"github.com/storefront-ops/import-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for every model the service
// owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ImportJob{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductImage{},
		&models.Customer{},
		&models.Category{},
		&models.InventoryLevel{},
		&models.BlogPost{},
		&models.Page{},
		&models.MediaAsset{},
		&models.Review{},
		&models.NewsletterSubscriber{},
		&models.DiscountCode{},
		&models.User{},
	)
}
