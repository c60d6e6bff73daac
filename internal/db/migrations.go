/*-------------------------------------------------------------------------
 *
 * migrations.go
 *    Schema migration runner for Verdict
 *
 * Applies .sql files from a migrations directory in lexical order,
 * recording applied versions in verdict.schema_migrations so reruns
 * are no-ops. Each migration runs in its own transaction.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/db/migrations.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/verdictml/verdict/internal/metrics"
)

const (
	createMigrationsTableQuery = `
		CREATE SCHEMA IF NOT EXISTS verdict;
		CREATE TABLE IF NOT EXISTS verdict.schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	getAppliedMigrationsQuery = `SELECT version FROM verdict.schema_migrations ORDER BY version`

	recordMigrationQuery = `INSERT INTO verdict.schema_migrations (version) VALUES ($1)`
)

/* MigrationRunner applies migrations from a directory */
type MigrationRunner struct {
	db  *sqlx.DB
	dir string
}

/* NewMigrationRunner creates a migration runner rooted at dir */
func NewMigrationRunner(db *sqlx.DB, dir string) (*MigrationRunner, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations directory '%s' not accessible: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations path '%s' is not a directory", dir)
	}
	return &MigrationRunner{db: db, dir: dir}, nil
}

/* Run applies all pending migrations in lexical order */
func (r *MigrationRunner) Run(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMigrationsTableQuery); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var applied []string
	if err := r.db.SelectContext(ctx, &applied, getAppliedMigrationsQuery); err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory '%s': %w", r.dir, err)
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if !appliedSet[entry.Name()] {
			pending = append(pending, entry.Name())
		}
	}
	sort.Strings(pending)

	for _, name := range pending {
		if err := r.apply(ctx, name); err != nil {
			return err
		}
		metrics.InfoWithContext(ctx, "Applied migration", map[string]interface{}{
			"version": name,
		})
	}
	return nil
}

/* apply runs a single migration file inside a transaction */
func (r *MigrationRunner) apply(ctx context.Context, name string) error {
	contents, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		return fmt.Errorf("failed to read migration '%s': %w", name, err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration '%s': %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(contents)); err != nil {
		return fmt.Errorf("migration '%s' failed: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, recordMigrationQuery, name); err != nil {
		return fmt.Errorf("failed to record migration '%s': %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration '%s': %w", name, err)
	}
	return nil
}
