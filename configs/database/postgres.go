package database

import (
	"fmt"
	"time"

	"sound-service/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresConnection(user, password, host, port, dbname string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port)
	return open(dsn)
}

func NewPostgresConnectionWithURL(databaseURL string) (*gorm.DB, error) {
	return open(databaseURL)
}

func open(dsn string) (*gorm.DB, error) {
	// TranslateError so unique-index violations surface as
	// gorm.ErrDuplicatedKey instead of driver-specific errors.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %v", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.Sound{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}

	return addIndexes(db)
}

func addIndexes(db *gorm.DB) error {
	// At most one non-removed connection may exist per unordered pair.
	// The partial unique index turns a concurrent double-send into a
	// clean duplicate-key error on the losing writer.
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_connections_active_pair
			ON connections (user_low_id, user_high_id)
			WHERE status <> 'removed' AND deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_connections_initiator_status
			ON connections (initiator_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_read
			ON notifications (recipient_id, read)`,
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add indexes: %v", err)
		}
	}
	return nil
}
