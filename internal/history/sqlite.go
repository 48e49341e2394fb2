package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/LegatusConsultingLtd/robotalk/internal/draft"
)

// SQLiteRepository persists the version list in a local SQLite database.
// Each Save replaces the whole list inside one transaction, matching the
// serialize-on-every-mutation contract of the store.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) the history database at path.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history database ping failed: %w", err)
	}
	schema := `CREATE TABLE IF NOT EXISTS versions (
		position   INTEGER PRIMARY KEY,
		id         TEXT NOT NULL,
		kind       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		snapshot   TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create versions table: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Load returns the stored versions newest-first.
func (r *SQLiteRepository) Load() ([]Version, error) {
	rows, err := r.db.Query("SELECT id, kind, created_at, snapshot FROM versions ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var version Version
		var createdAt, snapshot string
		if err := rows.Scan(&version.ID, &version.Kind, &createdAt, &snapshot); err != nil {
			return nil, fmt.Errorf("history scan failed: %w", err)
		}
		version.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
		}
		var state draft.State
		if err := json.Unmarshal([]byte(snapshot), &state); err != nil {
			return nil, fmt.Errorf("bad snapshot for %s: %w", version.ID, err)
		}
		version.Snapshot = state
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

// Save replaces the stored list with versions, preserving order.
func (r *SQLiteRepository) Save(versions []Version) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM versions"); err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO versions (position, id, kind, created_at, snapshot) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for position, version := range versions {
		snapshot, err := json.Marshal(version.Snapshot)
		if err != nil {
			return err
		}
		createdAt := version.CreatedAt.Format(time.RFC3339Nano)
		if _, err := stmt.Exec(position, version.ID, version.Kind, createdAt, string(snapshot)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
