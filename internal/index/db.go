// Package index keeps a local SQLite snapshot of the last directory listing
// so the tree can be drawn before the first refresh returns.
package index

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pfassina/scribe/internal/note"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    title TEXT NOT NULL,
    folder TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (title, folder)
);

CREATE INDEX IF NOT EXISTS idx_documents_folder ON documents(folder);

CREATE TABLE IF NOT EXISTS folders (
    name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the snapshot database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return initDB(conn)
}

// OpenMemory opens an in-memory database (for testing).
func OpenMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each pooled connection would otherwise get its own empty database.
	conn.SetMaxOpenConns(1)
	return initDB(conn)
}

func initDB(conn *sql.DB) (*DB, error) {
	if _, err := conn.Exec(schema); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("init schema: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("init schema: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("migrate db: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Snapshot is a stored directory listing.
type Snapshot struct {
	Documents []note.Location
	Folders   []string
	TakenAt   time.Time
}

// Empty reports whether the snapshot has never been written.
func (s Snapshot) Empty() bool {
	return s.TakenAt.IsZero()
}

// ReplaceListing swaps the stored listing for a new one in a single
// transaction. The snapshot is never patched row by row.
func (db *DB) ReplaceListing(docs []note.Location, folders []string, at time.Time) (err error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM documents"); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	if _, err = tx.Exec("DELETE FROM folders"); err != nil {
		return fmt.Errorf("clear folders: %w", err)
	}

	docStmt, err := tx.Prepare("INSERT OR IGNORE INTO documents (title, folder) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = docStmt.Close() }()
	for _, d := range docs {
		if _, err = docStmt.Exec(d.Title, d.Folder); err != nil {
			return fmt.Errorf("insert document %q: %w", d.Path(), err)
		}
	}

	folderStmt, err := tx.Prepare("INSERT OR IGNORE INTO folders (name) VALUES (?)")
	if err != nil {
		return err
	}
	defer func() { _ = folderStmt.Close() }()
	for _, f := range folders {
		if _, err = folderStmt.Exec(f); err != nil {
			return fmt.Errorf("insert folder %q: %w", f, err)
		}
	}

	if _, err = tx.Exec(`INSERT INTO meta (key, value) VALUES ('taken_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		at.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("stamp snapshot: %w", err)
	}

	return tx.Commit()
}

// Listing returns the stored snapshot. Documents come back ordered by folder
// then title, folders by name.
func (db *DB) Listing() (Snapshot, error) {
	var snap Snapshot

	var stamp string
	err := db.conn.QueryRow("SELECT value FROM meta WHERE key = 'taken_at'").Scan(&stamp)
	switch {
	case err == sql.ErrNoRows:
		return snap, nil
	case err != nil:
		return snap, fmt.Errorf("read snapshot time: %w", err)
	}
	if snap.TakenAt, err = time.Parse(time.RFC3339Nano, stamp); err != nil {
		return snap, fmt.Errorf("parse snapshot time: %w", err)
	}

	rows, err := db.conn.Query("SELECT title, folder FROM documents ORDER BY folder, title")
	if err != nil {
		return snap, fmt.Errorf("read documents: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var loc note.Location
		if err := rows.Scan(&loc.Title, &loc.Folder); err != nil {
			return snap, fmt.Errorf("scan document: %w", err)
		}
		snap.Documents = append(snap.Documents, loc)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	frows, err := db.conn.Query("SELECT name FROM folders ORDER BY name")
	if err != nil {
		return snap, fmt.Errorf("read folders: %w", err)
	}
	defer func() { _ = frows.Close() }()
	for frows.Next() {
		var name string
		if err := frows.Scan(&name); err != nil {
			return snap, fmt.Errorf("scan folder: %w", err)
		}
		snap.Folders = append(snap.Folders, name)
	}
	return snap, frows.Err()
}

func (db *DB) migrate() error {
	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("snapshot schema version %d is newer than supported %d", version, schemaVersion)
	}
	if version == schemaVersion {
		return nil
	}

	// Version 0 databases predate the meta table stamp; drop any stale rows
	// so an unstamped listing is never mistaken for a real one.
	if _, err := db.conn.Exec("DELETE FROM documents; DELETE FROM folders;"); err != nil {
		return fmt.Errorf("reset listing: %w", err)
	}
	if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
