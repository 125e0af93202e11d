package database

import (
	"fmt"
	"log"

	"rental-service/internal/model"
	"rental-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB initializes the database connection and migrates the public-schema
// tables. Tenant-schema tables are migrated lazily by the tenant resolver.
func InitDB(cfg *config.Config) error {
	var err error

	// Connect with PreferSimpleProtocol to prevent "prepared statement
	// already exists" errors behind connection poolers.
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	DB, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
	})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		return err
	}

	// Configure connection pool
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("Failed to get database connection: %v", err)
		return err
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	// Public-schema tables: tenants, plans, domain verifications.
	err = DB.AutoMigrate(&model.Plan{}, &model.Tenant{}, &model.DomainVerification{})
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	return nil
}

// CreateSchema creates a Postgres schema if it does not already exist. Safe
// to call concurrently for the same name.
func CreateSchema(db *gorm.DB, name string) error {
	stmt := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", name)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create schema %s: %w", name, err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
