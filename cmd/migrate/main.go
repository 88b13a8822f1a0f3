package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"study-backend/internal/shared/config"
	"study-backend/internal/shared/storage/db"
	"study-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.LogLevel)
	defer telemetry.Sync()

	sqlDB, err := db.Open(context.Background(), cfg.DatabaseURL, db.MigrateOptions().WithPool(cfg.DBPool))
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		telemetry.Sync()
		os.Exit(1)
	}
	sqlDB.Close()
}
