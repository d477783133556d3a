package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sakif/kanban-board/internal/model"
	"github.com/sakif/kanban-board/internal/normalize"
	"github.com/sakif/kanban-board/internal/repository/seed"
)

// ErrEmptyDocument is returned by Decode for null or for an object with
// neither a users nor a tasks array.
var ErrEmptyDocument = errors.New("repository: document has no users or tasks")

// Decode parses a stored document and repairs it with the normalizer. It
// fails when the bytes are not a JSON object or carry no board at all;
// backends treat that as "no usable document" and reseed.
func Decode(data []byte) (*model.Document, error) {
	var raw normalize.RawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("repository: decoding document: %w", err)
	}
	if raw.Users == nil && raw.Tasks == nil {
		return nil, ErrEmptyDocument
	}
	return normalize.Document(raw), nil
}

// Encode renders a document in the on-disk format.
func Encode(doc *model.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("repository: encoding document: %w", err)
	}
	return append(data, '\n'), nil
}

// ResetTasks replaces every task with the default onboarding checklist,
// keeping registered users.
func ResetTasks(ctx context.Context, store Store) error {
	return store.Update(ctx, func(doc *model.Document) error {
		doc.Tasks = seed.Tasks(doc.Users)
		return nil
	})
}
