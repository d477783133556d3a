// Package storetest holds the behavioural tests every repository.Store
// backend must pass. Backends call Run from their own _test.go files.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/kanban-board/internal/model"
	"github.com/sakif/kanban-board/internal/repository"
)

// Factory opens a fresh, empty store. It is called once per subtest.
type Factory func(t *testing.T) repository.Store

func Run(t *testing.T, open Factory) {
	t.Run("seeds default board on first load", func(t *testing.T) {
		store := open(t)
		doc, err := store.Load(context.Background())
		require.NoError(t, err)

		assert.NotEmpty(t, doc.Users)
		assert.Len(t, doc.Tasks, 12)
		for _, task := range doc.Tasks {
			assert.True(t, task.Status.Valid())
			assert.True(t, task.Priority.Valid())
			_, ok := doc.UserByID(task.AssigneeID)
			assert.True(t, ok, "assignee %q must exist", task.AssigneeID)
		}
	})

	t.Run("update persists", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()

		err := store.Update(ctx, func(doc *model.Document) error {
			doc.Users = append(doc.Users, model.User{ID: "ann", Name: "Ann", Email: "ann@x.io"})
			return nil
		})
		require.NoError(t, err)

		doc, err := store.Load(ctx)
		require.NoError(t, err)
		_, ok := doc.UserByEmail("ANN@x.io")
		assert.True(t, ok)
	})

	t.Run("failed update writes nothing", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		before, err := store.Load(ctx)
		require.NoError(t, err)

		boom := errors.New("boom")
		err = store.Update(ctx, func(doc *model.Document) error {
			doc.Tasks = nil
			return boom
		})
		assert.ErrorIs(t, err, boom)

		after, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, after.Tasks, len(before.Tasks))
	})

	t.Run("load returns an independent copy", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()

		doc, err := store.Load(ctx)
		require.NoError(t, err)
		doc.Tasks[0].Title = "mutated"

		again, err := store.Load(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.Tasks[0].Title)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		_, err := store.Load(ctx)
		require.NoError(t, err)

		const writers = 8
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := store.Update(ctx, func(doc *model.Document) error {
					doc.Users = append(doc.Users, model.User{
						ID:    fmt.Sprintf("w%d", i),
						Name:  "Writer",
						Email: fmt.Sprintf("w%d@x.io", i),
					})
					return nil
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		doc, err := store.Load(ctx)
		require.NoError(t, err)
		for i := 0; i < writers; i++ {
			_, ok := doc.UserByID(fmt.Sprintf("w%d", i))
			assert.True(t, ok, "writer %d lost", i)
		}
	})

	t.Run("reset keeps users and restores tasks", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()

		require.NoError(t, store.Update(ctx, func(doc *model.Document) error {
			doc.Users = append(doc.Users, model.User{ID: "ann", Name: "Ann", Email: "ann@x.io"})
			doc.Tasks = doc.Tasks[:1]
			return nil
		}))
		require.NoError(t, repository.ResetTasks(ctx, store))

		doc, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, doc.Tasks, 12)
		_, ok := doc.UserByID("ann")
		assert.True(t, ok)
	})
}
