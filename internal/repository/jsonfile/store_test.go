package jsonfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/kanban-board/internal/model"
	"github.com/sakif/kanban-board/internal/repository"
	"github.com/sakif/kanban-board/internal/repository/storetest"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "db.json")
	s, err := New(path, discard)
	require.NoError(t, err)
	return s, path
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		s, _ := newTestStore(t)
		return s
	})
}

func TestLoad_WritesSeedFile(t *testing.T) {
	s, path := newTestStore(t)

	_, err := s.Load(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err, "seed document should be written to disk")
}

func TestLoad_UnusableFileIsReplaced(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"corrupt", "{not json"},
		{"null", "null"},
		{"empty object", "{}"},
		{"explicit nulls", `{"users": null, "tasks": null}`},
		{"array", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, path := newTestStore(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			doc, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.Len(t, doc.Tasks, 12)
			assert.NotEmpty(t, doc.Users)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			_, err = repository.Decode(data)
			assert.NoError(t, err, "file on disk should be valid again")
		})
	}
}

func TestLoad_EmptyBoardIsKept(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"users": [], "tasks": []}`), 0o644))

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Users)
	assert.Empty(t, doc.Tasks)
}

func TestLoad_RepairsHandEditedFile(t *testing.T) {
	s, path := newTestStore(t)
	body := `{
		"users": [{"id": "ann", "name": "Ann", "email": "ann@x.io"}],
		"tasks": [{"id": "t1", "title": "  Hand edited ", "status": "later", "priority": 9, "assigneeId": "nobody"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	doc, err := s.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, doc.Tasks, 1)
	task := doc.Tasks[0]
	assert.Equal(t, "Hand edited", task.Title)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.PriorityHighest, task.Priority)
	assert.Equal(t, "ann", task.AssigneeID)
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New("", discard)
	assert.Error(t, err)
}
