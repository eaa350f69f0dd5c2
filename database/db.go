package database

import (
	"fmt"

	"facturation-backend/config"
	"facturation-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the shared connection. Tenancy is a column, not a
// schema: every query scopes on tenant_id.
func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	DB = db
	return nil
}

// AutoMigrate applies (idempotent) schema migrations. Money columns
// carry numeric(12,2) via struct tags; the composite unique indexes on
// (tenant, number) and on the sequence key come from the models too.
func AutoMigrate() error {
	return DB.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Client{},
		&models.Document{},
		&models.DocumentLine{},
		&models.Invoice{},
		&models.InvoiceLine{},
		&models.DocumentSequence{},
		&models.EventLog{},
		&models.Notification{},
		&models.IdempotencyKey{},
	)
}
