package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/leozhansino-design/butternovel-mobile-sub002/api"
	"github.com/leozhansino-design/butternovel-mobile-sub002/config"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database"
	"github.com/leozhansino-design/butternovel-mobile-sub002/discovery"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
)

func main() {
	log.Info().Msg("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	cfg := config.Load(config.New())

	log.Info().Str("dbType", cfg.Database.Type).Msg("Connecting to database...")
	switch cfg.Database.Type {
	case "postgres", "supa":
	default:
		log.Fatal().Str("dbType", cfg.Database.Type).Msg("Unsupported DB_TYPE")
	}

	newLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.Database.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	if err := database.UseReplicas(db, cfg.Database.ReplicaDSNs); err != nil {
		log.Fatal().Err(err).Msg("Error registering read replicas")
	}

	if cfg.Jobs.AutoMigrate {
		log.Info().Msg("Migrating schema...")
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Error migrating schema")
		}
	}

	// If generating models, run generation and exit
	if cfg.Jobs.GenerateModels {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, ""); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if cfg.Jobs.GenerateColumnReport {
		log.Info().Msg("Generating column mismatch report...")
		if _, err := models.GenerateColumnMismatchReport(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	currentDB := database.New(db, database.WithSnapshotReads())

	if cfg.Jobs.RefreshHotScores {
		refresher := discovery.NewRefresher(currentDB.NovelRepo(), cfg.HotScore.BatchSize, cfg.HotScore.Concurrency, log.Logger)
		if _, err := refresher.RefreshAll(context.Background(), time.Now()); err != nil {
			log.Fatal().Err(err).Msg("Error refreshing hot scores")
		}
		return
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Err(fatalErr).Msg("Closing server")

	server.ShutdownGracefully(30 * time.Second)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
