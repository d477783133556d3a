// Package sqlite stores the board document in an SQLite database.
//
// The document lives in a single row of the documents table together with a
// version counter. Update runs inside an IMMEDIATE transaction, so the
// read-modify-write cycle is atomic even when several processes share the
// same database file.
//
// modernc.org/sqlite is a pure Go translation of SQLite: no CGo, no C
// toolchain needed to build.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/kanban-board/internal/model"
	"github.com/sakif/kanban-board/internal/repository"
	"github.com/sakif/kanban-board/internal/repository/seed"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
}

// New opens (creating if needed) the database at dbPath and runs migrations.
func New(dbPath string, logger *slog.Logger) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
		}
	}

	// _txlock=immediate makes BeginTx take the write lock up front, which is
	// what turns Update into a real critical section across processes.
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)", dbPath)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces a real connection so a bad path fails here, not on the
	// first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a writer holds the lock.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn, logger: logger}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			body       TEXT NOT NULL,
			version    INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

func (db *DB) Load(ctx context.Context) (*model.Document, error) {
	var out *model.Document
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		doc, version, stale, err := db.read(ctx, tx)
		if err != nil {
			return err
		}
		if stale {
			if err := db.write(ctx, tx, doc, version+1); err != nil {
				return err
			}
		}
		out = doc
		return nil
	})
	return out, err
}

func (db *DB) Update(ctx context.Context, fn func(doc *model.Document) error) error {
	var fnErr error
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		doc, version, _, err := db.read(ctx, tx)
		if err != nil {
			return err
		}
		if fnErr = fn(doc); fnErr != nil {
			return fnErr
		}
		return db.write(ctx, tx, doc, version+1)
	})
	if fnErr != nil {
		return fnErr
	}
	return err
}

// Version reports how many times the document has been written.
func (db *DB) Version(ctx context.Context) (int64, error) {
	var v int64
	err := db.conn.QueryRowContext(ctx, `SELECT version FROM documents WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading version: %w", err)
	}
	return v, nil
}

func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// read returns the stored document. stale is true when the row was missing
// or undecodable and the returned document is the seed board.
func (db *DB) read(ctx context.Context, tx *sql.Tx) (doc *model.Document, version int64, stale bool, err error) {
	var body string
	err = tx.QueryRowContext(ctx,
		`SELECT body, version FROM documents WHERE id = 1`,
	).Scan(&body, &version)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		db.logger.Info("no stored board, writing default board")
		return seed.Document(), 0, true, nil
	case err != nil:
		return nil, 0, false, fmt.Errorf("sqlite: reading document: %w", err)
	}

	doc, err = repository.Decode([]byte(body))
	if err != nil {
		db.logger.Warn("stored board unreadable, replacing with default board",
			slog.String("error", err.Error()),
		)
		return seed.Document(), version, true, nil
	}
	return doc, version, false, nil
}

func (db *DB) write(ctx context.Context, tx *sql.Tx, doc *model.Document, version int64) error {
	body, err := repository.Encode(doc)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, body, version, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			body = excluded.body,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		string(body), version, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing document: %w", err)
	}
	return nil
}
