// Package repository defines the persistence contract for the board document.
//
// The whole board is one document. Every mutation is a read-modify-write of
// that document, so the interface exposes a transaction-style Update instead
// of per-entity CRUD: backends decide how to make the cycle atomic.
package repository

import (
	"context"

	"github.com/sakif/kanban-board/internal/model"
)

// Store persists the {users, tasks} document.
type Store interface {
	// Load returns a snapshot. Callers may mutate it freely.
	Load(ctx context.Context) (*model.Document, error)

	// Update hands fn a copy of the current document and commits the copy
	// once fn returns nil. When fn returns an error nothing is written and
	// the error is returned unchanged.
	Update(ctx context.Context, fn func(doc *model.Document) error) error

	Close() error
}
