package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salon-server/config"
	"salon-server/models"
)

var DB *gorm.DB

// Initialize sets up the database connection from AppConfig and runs migrations
func Initialize() error {
	cfg := config.AppConfig.Database

	dsn := cfg.PostgresDSN()
	if cfg.Driver == "sqlite" {
		dsn = cfg.SQLitePath
	}

	level := logger.Warn
	if config.AppConfig.Server.GinMode == "debug" {
		level = logger.Info
	}

	db, err := Open(cfg.Driver, dsn, level)
	if err != nil {
		return err
	}
	DB = db

	log.Printf("✅ Successfully connected to %s database", cfg.Driver)

	if err := Migrate(DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("✅ Database migrations completed successfully")
	return nil
}

// Open connects to driver ("postgres" or "sqlite") and tunes the pool.
func Open(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the server owns
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Service{},
		&models.Product{},
		&models.Booking{},
		&models.Order{},
		&models.OrderItem{},
		&models.Enquiry{},
		&models.User{},
		&models.RefreshToken{},
	)
}

func GetDB() *gorm.DB {
	return DB
}
