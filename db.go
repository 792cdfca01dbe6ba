// db.go
//
// Storage for the article cache (ARTICLE_CACHE=sqlite).
// The cache is a single SQLite file holding fetched markup; losing it only
// costs refetches, so durability is traded for write speed.
//
// Schema lives in assets/sql and is applied by migrate on every start.

package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// cacheDSNParams are the go-sqlite3 connection options for the cache file.
const cacheDSNParams = "?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"

/**
 * openDB opens the article cache at file, creating the file and its
 * directory when missing.
 *
 * - WAL lets readers proceed while a fetch is being stored.
 * - synchronous=NORMAL: a crash may drop the newest rows, never corrupt.
 * - One connection; go-sqlite3 writers would otherwise contend for the lock.
 *
 * @param file Path of the cache database, e.g. ./data/redactle.db.
 */
func openDB(file string) (*sql.DB, error) {
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", file+cacheDSNParams)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	// sql.Open is lazy; fail here rather than on the first lookup.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open cache %s: %w", file, err)
	}
	return db, nil
}

/**
 * migrate brings the cache schema up to date from the *.sql files in fsys.
 *
 * - Files run in name order, one transaction each.
 * - Applied names are kept in _migrations; those files are skipped.
 * - A failing file is rolled back and stops the run; earlier ones stay applied.
 */
func migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		if applied[name] {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := applyMigration(db, name, string(body)); err != nil {
			return err
		}
		log.Info().Str("migration", path.Base(name)).Msg("cache schema updated")
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT name FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("query _migrations: %w", err)
	}
	defer rows.Close()
	done := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		done[name] = true
	}
	return done, rows.Err()
}

func applyMigration(db *sql.DB, name, body string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(body); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	if _, err := tx.Exec(`INSERT INTO _migrations (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}
