package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ryanmoffett1/harmonydrill/internal/config"
	"github.com/ryanmoffett1/harmonydrill/internal/logging"
	"github.com/ryanmoffett1/harmonydrill/internal/models"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// AutoMigrate covers tables, columns and foreign keys; the
	// leaderboard index is created separately.
	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	leaderboardIndex := `CREATE INDEX IF NOT EXISTS idx_leaderboard ON session_records (score DESC, total_time_ms ASC);`
	if err := DB.Exec(leaderboardIndex).Error; err != nil {
		log.Fatal("Failed to create leaderboard index", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}

// Migrate runs the schema migration on any gorm connection. The
// repository tests reuse it against in-memory sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.PlayerRatingRecord{},
		&models.ReviewItemRecord{},
		&models.SessionRecord{},
		&models.SessionAnswer{},
	)
}
