package main

import (
	"fmt"
	"log/slog"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/config"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/database"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

// newEngine builds the sanitizer from the effective configuration.
func newEngine(cfg *config.Config, logger *slog.Logger) (*sanitizer.Engine, error) {
	table, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return sanitizer.New(
		sanitizer.WithPolicy(table),
		sanitizer.WithLimits(cfg.Limits()),
		sanitizer.WithMinify(cfg.Minify),
		sanitizer.WithLogger(logger),
	), nil
}

// openAuditDB opens the audit database when cfg asks for it. A nil
// database with a nil error means auditing is off.
func openAuditDB(cfg *config.Config, logger *slog.Logger) (*database.AuditDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("audit database opened", "path", db.Path())
	return db, nil
}
