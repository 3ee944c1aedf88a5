package main

import (
	"flag"
	"fmt"
	"os"

	"notes-service/config"
	"notes-service/database"
	"notes-service/server"

	_ "github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run (start, migrate)")
	devFlag := flag.Bool("dev", false, "Fall back to development secrets when SESSION_SECRET or API_KEYS is unset")
	flag.Parse()

	if *commandFlag == "" {
		fmt.Println("Usage: go run main.go --command <command-name> [--dev]")
		os.Exit(1)
	}

	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	load := config.Load
	if *devFlag {
		load = config.LoadWithDefaults
	}
	cfg, err := load()
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	switch *commandFlag {
	case "start":
		if err := server.StartServer(cfg); err != nil {
			os.Exit(1)
		}
	case "migrate":
		dbConn, err := database.InitializeDatabase(cfg.Database)
		if err != nil {
			os.Exit(1)
		}
		dbConn.Close()
		logger.Info("Migrations applied")
	default:
		fmt.Printf("Unknown command %q\n", *commandFlag)
		os.Exit(1)
	}
}
