// Package jsonfile stores the board document as a single JSON file.
//
// This is the default backend. A mutex serialises Update within the process,
// and writes go through a temp file plus rename so a crash mid-write leaves
// the previous document intact. Two processes sharing one file can still
// overwrite each other; use the sqlite backend for that.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sakif/kanban-board/internal/model"
	"github.com/sakif/kanban-board/internal/repository"
	"github.com/sakif/kanban-board/internal/repository/seed"
)

var _ repository.Store = (*Store)(nil)

type Store struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// New prepares a store at path, creating the parent directory. The file
// itself is created lazily on first read.
func New(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonfile: path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: creating data directory: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

func (s *Store) Load(ctx context.Context) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read()
}

func (s *Store) Update(ctx context.Context, fn func(doc *model.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *Store) Close() error { return nil }

// read returns the current document, writing the seed document first when
// the file is missing or unparseable. Caller holds mu.
func (s *Store) read() (*model.Document, error) {
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info("data file missing, writing default board", slog.String("path", s.path))
		return s.reseed()
	case err != nil:
		return nil, fmt.Errorf("jsonfile: reading %s: %w", s.path, err)
	}

	doc, err := repository.Decode(data)
	if err != nil {
		s.logger.Warn("data file unreadable, replacing with default board",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return s.reseed()
	}
	return doc, nil
}

func (s *Store) reseed() (*model.Document, error) {
	doc := seed.Document()
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

func (s *Store) write(doc *model.Document) error {
	data, err := repository.Encode(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".board-*.json")
	if err != nil {
		return fmt.Errorf("jsonfile: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("jsonfile: replacing %s: %w", s.path, err)
	}
	return nil
}
