// Package db opens the Postgres pool that backs the document store and
// applies its migrations.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"study-backend/internal/shared/config"
	"study-backend/internal/shared/telemetry"
)

const defaultPingTimeout = 5 * time.Second

// Options controls pool sizing and the startup ping.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// ServerOptions sizes the pool for the API process. Generation holds no
// connection while waiting on the model, so a small pool is enough.
func ServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     defaultPingTimeout,
	}
}

// MigrateOptions sizes the pool for cmd/migrate.
func MigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     defaultPingTimeout,
	}
}

// WithPool applies the non-zero overrides from configuration.
func (o Options) WithPool(p config.DBPool) Options {
	if p.MaxOpenConns > 0 {
		o.MaxOpenConns = p.MaxOpenConns
	}
	if p.MaxIdleConns > 0 {
		o.MaxIdleConns = p.MaxIdleConns
	}
	if p.ConnMaxLifetime > 0 {
		o.ConnMaxLifetime = p.ConnMaxLifetime
	}
	if p.ConnMaxIdleTime > 0 {
		o.ConnMaxIdleTime = p.ConnMaxIdleTime
	}
	if p.PingTimeout > 0 {
		o.PingTimeout = p.PingTimeout
	}
	return o
}

// Connect opens the pool for databaseURL and pings it.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	opts.apply(db)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.connected", map[string]any{
		"max_open":     db.Stats().MaxOpenConnections,
		"max_idle":     opts.MaxIdleConns,
		"ping_timeout": pingTimeout.String(),
	})
	return db, nil
}

// Open connects and brings the documents schema up to date.
func Open(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	db, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (o Options) apply(db *sql.DB) {
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(o.ConnMaxLifetime)
	}
	if o.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(o.ConnMaxIdleTime)
	}
}
