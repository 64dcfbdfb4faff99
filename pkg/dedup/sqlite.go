package dedup

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	errs "dydl/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS acquired (
	scope     TEXT NOT NULL,
	owner_id  TEXT NOT NULL,
	item_id   TEXT NOT NULL,
	snapshot  BLOB,
	done_at   TIMESTAMP NOT NULL,
	PRIMARY KEY (scope, owner_id, item_id)
);
`

// SQLiteStore is a Store persisted in a single SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the dedup database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errs.Newf(errs.ErrorTypeFilesystem, "failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeFilesystem, "failed to open database: %v", err)
	}

	// One connection; the run is sequential and sqlite dislikes more
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errs.Newf(errs.ErrorTypeFilesystem, "failed to initialize database: %v", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) IsDone(key Key) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM acquired WHERE scope = ? AND owner_id = ? AND item_id = ?",
		string(key.Scope), key.OwnerID, key.ItemID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errs.Newf(errs.ErrorTypeFilesystem, "dedup query failed: %v", err)
	}
	return true, nil
}

func (s *SQLiteStore) MarkDone(key Key, snapshot []byte) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO acquired (scope, owner_id, item_id, snapshot, done_at) VALUES (?, ?, ?, ?, ?)",
		string(key.Scope), key.OwnerID, key.ItemID, snapshot, time.Now().UTC(),
	)
	if err != nil {
		return errs.Newf(errs.ErrorTypeFilesystem, "dedup insert failed: %v", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
