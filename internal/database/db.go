package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate runs AutoMigrate for every core model. Shared with tests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.BuyerProfile{},
		&model.VendorProfile{},
		&model.Category{},
		&model.Product{},
		&model.RFQ{},
		&model.RFQItem{},
		&model.Bid{},
		&model.BidItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
	)
}
