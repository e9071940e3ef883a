package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/daviag/bookshop-order-service/internal/platform/migrations"
	platformpostgres "github.com/daviag/bookshop-order-service/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("POSTGRES_DSN not set or connection failed; cannot migrate: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := migrations.Run(db); err != nil {
		log.Fatalf("failed to migrate orders schema: %v", err)
	}
	logger.Info("orders schema migration completed")
}
