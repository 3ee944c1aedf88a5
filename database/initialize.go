package database

import (
	"strings"

	"notes-service/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeDatabase opens the primary store and brings its schema up to date.
func InitializeDatabase(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dbConn := db.GetDBConnection(db.DatabaseConfig{
		DRIVER: cfg.Driver,
		DB:     withPragmas(cfg.DSN),
	})

	if err := Migrate(dbConn); err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		dbConn.Close()
		return nil, err
	}

	logger.Info("Database initialized successfully", zap.String("dsn", cfg.DSN))
	return dbConn, nil
}

// withPragmas adds a busy timeout so concurrent writers wait instead of failing.
func withPragmas(dsn string) string {
	if strings.Contains(dsn, "_busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000"
}
