package database

import (
	"fmt"
	"time"

	"salons/backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every table the application owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Room{},
		&models.Channel{},
		&models.Message{},
		&models.RoomRole{},
		&models.Ban{},
	}
}

// Open connects to the database with the given driver ("postgres" or "sqlite").
func Open(driver, dsn string) (*gorm.DB, error) {
	// SQL logs go through zap so they share the application's format.
	gormLogger := logger.New(
		zap.NewStdLog(zap.L().Named("gorm")),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		if dsn == "" {
			dsn = "salons.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// One writer at a time; concurrent sqlite connections would fail with SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Connect initializes the global database connection and runs migrations.
func Connect(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	zap.L().Info("Database connection established.", zap.String("driver", driver))

	if err := Migrate(db); err != nil {
		return err
	}
	zap.L().Info("Database migrated successfully.")

	DB = db
	return nil
}
