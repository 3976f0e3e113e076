// Package db embeds the Postgres migrations and applies them with goose.
package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationsDir is the directory inside Migrations holding the SQL files.
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS

// Run executes a goose command ("up", "down", "status", "reset") against
// the pool using the embedded migrations.
func Run(ctx context.Context, pool *pgxpool.Pool, command string) error {
	switch command {
	case "up", "down", "status", "reset":
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, sqlDB, MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, sqlDB, MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, sqlDB, MigrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, sqlDB, MigrationsDir)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
