package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/finoffice/backend/internal/infrastructure/config"
	"github.com/finoffice/backend/internal/infrastructure/logger"
	"github.com/finoffice/backend/internal/infrastructure/persistence"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	switch command {
	case "up":
		if err := db.Migrate(); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Schema migrated successfully")

	case "ping":
		if err := db.Ping(); err != nil {
			log.Fatal("Database unreachable", zap.Error(err))
		}
		log.Info("Database reachable")

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`FinOffice schema migration tool

Usage:
  migrate [flags] <command>

Commands:
  up      Create or update all engine tables
  ping    Verify database connectivity

Flags:
  -log-level string   Log level: debug, info, warn, error (default: info)

Environment Variables:
  FINOFFICE_DATABASE_HOST, FINOFFICE_DATABASE_PORT, FINOFFICE_DATABASE_USER,
  FINOFFICE_DATABASE_PASSWORD, FINOFFICE_DATABASE_DBNAME`)
}
