package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ms-fyyur/internal/config"
	"ms-fyyur/internal/logger"
	"ms-fyyur/internal/models"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const maxRetries = 5

// RetryDelay is the pause between connection attempts.
var RetryDelay = 2 * time.Second

// Open connects to the configured store, retrying while it comes up, and wraps it in bun.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	driverName := "postgres"
	if cfg.Driver == "sqlite" {
		driverName = sqliteshim.ShimName
	}

	var sqldb *sql.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to %s (attempt %d/%d)", cfg.Driver, i+1, maxRetries))
		sqldb, err = sql.Open(driverName, cfg.DSN)
		if err == nil {
			err = sqldb.PingContext(ctx)
			if err == nil {
				break
			}
			sqldb.Close()
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to %s: %v", cfg.Driver, err))
		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(RetryDelay):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s after %d attempts: %w", cfg.Driver, maxRetries, err)
	}

	var db *bun.DB
	if cfg.Driver == "sqlite" {
		// One connection keeps in-memory databases shared and serialises writers.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	} else {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
		sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
		db = bun.NewDB(sqldb, pgdialect.New())
	}

	log.Info("DATABASE", fmt.Sprintf("✅ %s connection successful", cfg.Driver))
	return db, nil
}

// Models lists every table in creation order.
var Models = []any{
	(*models.Venue)(nil),
	(*models.Artist)(nil),
	(*models.ArtistAvailability)(nil),
	(*models.Show)(nil),
	(*models.Category)(nil),
	(*models.Question)(nil),
}

// CreateSchema creates any missing tables straight from the bun models.
// Production postgres databases are managed by the migrations package instead.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, m := range Models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}

// ResetSchema drops and recreates every table.
func ResetSchema(ctx context.Context, db *bun.DB) error {
	for i := len(Models) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(Models[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", Models[i], err)
		}
	}
	return CreateSchema(ctx, db)
}

// Lower folds s the way LOWER() folds a column on db. SQLite only folds ASCII
// letters, so non-ASCII text there compares case-sensitively on both sides.
func Lower(db *bun.DB, s string) string {
	if db.Dialect().Name() != dialect.SQLite {
		return strings.ToLower(s)
	}
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
