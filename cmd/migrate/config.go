package main

import (
	"os"

	"bookcomments/internal/config"
)

func loadEnvFiles() {
	config.LoadEnvFiles()
}

// migrationsDir is where 'create' writes new files; the other commands use
// the migrations embedded in package db.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}
