/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog keeps a small SQLite index of completed exports so the
// host can list recent drawings without scanning the export directory.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "drawingapp/internal/log"
	"drawingapp/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	FileName = "exports.sqlite"

	// schemaVersion tracks the catalog schema. Bump it together with a
	// migration step in runMigrations.
	schemaVersion = 2

	// timeLayout has fixed width so created_at sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Entry describes one exported file.
type Entry struct {
	ID        int64
	Path      string
	Format    string
	Width     int
	Height    int
	Strokes   int
	CreatedAt time.Time
}

// Catalog wraps the database handle. Methods are safe for concurrent use.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open creates or opens the catalog at path, enables WAL mode and brings the
// schema up to date.
func Open(path string) (*Catalog, error) {
	l := applog.WithOperation(applog.WithComponent("catalog"), "open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create catalog dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("catalog ready")
	return &Catalog{db: db, path: path}, nil
}

func (c *Catalog) Path() string { return c.path }

func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureSchema creates the current schema on a fresh database. Existing
// tables are left alone; runMigrations upgrades them.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS exports (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			path        TEXT NOT NULL,
			format      TEXT NOT NULL,
			width       INTEGER NOT NULL,
			height      INTEGER NOT NULL,
			strokes     INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create exports table: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema steps up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		applog.WithComponent("catalog").Warn("catalog schema is newer than this build", slog.Int("schema", cur))
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// v1 had no stroke counts and no created_at index.
			if !hasColumn(ctx, db, "exports", "strokes") {
				stmts = append(stmts, `ALTER TABLE exports ADD COLUMN strokes INTEGER NOT NULL DEFAULT 0;`)
			}
			stmts = append(stmts, `CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);`)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	// Fresh databases start at schemaVersion and skip the loop.
	_, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);`)
	return err
}

func hasColumn(ctx context.Context, db *sql.DB, table, col string) bool {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s);", table))
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return false
		}
		if strings.EqualFold(name, col) {
			return true
		}
	}
	return false
}

// Record stores e and returns its row id. A zero CreatedAt is set to now.
func (c *Catalog) Record(ctx context.Context, e Entry) (int64, error) {
	if strings.TrimSpace(e.Path) == "" {
		return 0, errors.New("export path is required")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Format == "" {
		e.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Path)), ".")
	}
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO exports(path, format, width, height, strokes, created_at) VALUES(?, ?, ?, ?, ?, ?)`,
		e.Path, e.Format, e.Width, e.Height, e.Strokes, e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert export: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("export id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first. limit <= 0 means 20.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, path, format, width, height, strokes, created_at FROM exports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ts string
		)
		if err := rows.Scan(&e.ID, &e.Path, &e.Format, &e.Width, &e.Height, &e.Strokes, &ts); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		if t, err := time.Parse(timeLayout, ts); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
