package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a schema migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order; append new entries, never edit old ones
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_staypoints",
		SQL: `
			CREATE TABLE IF NOT EXISTS staypoints (
				id INTEGER PRIMARY KEY,
				user_id INTEGER NOT NULL,
				started_at INTEGER NOT NULL,
				finished_at INTEGER NOT NULL,
				center_lat REAL,
				center_lon REAL,
				activity INTEGER DEFAULT 0,
				trip_id INTEGER,
				prev_trip_id INTEGER,
				next_trip_id INTEGER,
				location_id INTEGER,
				algo_version TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_staypoints_user_time ON staypoints(user_id, started_at);
		`,
	},
	{
		Version: 2,
		Name:    "create_triplegs",
		SQL: `
			CREATE TABLE IF NOT EXISTS triplegs (
				id INTEGER PRIMARY KEY,
				user_id INTEGER NOT NULL,
				started_at INTEGER NOT NULL,
				finished_at INTEGER NOT NULL,
				geom_json TEXT,
				distance_meters REAL,
				trip_id INTEGER,
				algo_version TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_triplegs_user_time ON triplegs(user_id, started_at);
		`,
	},
	{
		Version: 3,
		Name:    "create_trips",
		SQL: `
			CREATE TABLE IF NOT EXISTS trips (
				id INTEGER PRIMARY KEY,
				user_id INTEGER NOT NULL,
				started_at INTEGER NOT NULL,
				finished_at INTEGER NOT NULL,
				origin_staypoint_id INTEGER,
				destination_staypoint_id INTEGER,
				algo_version TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_trips_user_time ON trips(user_id, started_at);
		`,
	},
	{
		Version: 4,
		Name:    "create_locations",
		SQL: `
			CREATE TABLE IF NOT EXISTS locations (
				id INTEGER PRIMARY KEY,
				user_id INTEGER NOT NULL,
				center_lat REAL NOT NULL,
				center_lon REAL NOT NULL,
				staypoint_count INTEGER NOT NULL,
				algo_version TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 5,
		Name:    "create_analysis_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS analysis_tasks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				skill_name TEXT NOT NULL,
				task_type TEXT NOT NULL,
				run_id TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				progress_percent REAL NOT NULL DEFAULT 0,
				params_json TEXT,
				total_records INTEGER DEFAULT 0,
				processed_records INTEGER DEFAULT 0,
				failed_records INTEGER DEFAULT 0,
				result_summary TEXT,
				error_message TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				started_at TIMESTAMP,
				completed_at TIMESTAMP
			);
		`,
	},
}

// Migrate applies all pending migrations
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d_%s: %w", m.Version, m.Name, err)
		}
		log.Printf("Applied migration %d_%s", m.Version, m.Name)
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		return err
	}

	return tx.Commit()
}
