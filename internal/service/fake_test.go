package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/kanban-board/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeStore is an in-memory repository.Store. Set loadErr / updateErr to
// simulate storage failures.
type fakeStore struct {
	mu        sync.Mutex
	doc       *model.Document
	writes    int
	loadErr   error
	updateErr error
}

func newFakeStore(users []model.User, tasks []model.Task) *fakeStore {
	if users == nil {
		users = []model.User{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return &fakeStore{doc: &model.Document{Users: users, Tasks: tasks}}
}

func (f *fakeStore) Load(context.Context) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.doc.Clone(), nil
}

func (f *fakeStore) Update(_ context.Context, fn func(*model.Document) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	work := f.doc.Clone()
	if err := fn(work); err != nil {
		return err
	}
	f.doc = work
	f.writes++
	return nil
}

func (f *fakeStore) Close() error { return nil }

// fakeSessions records issued tokens; failIssue simulates a backend outage.
type fakeSessions struct {
	mu        sync.Mutex
	tokens    map[string]string
	next      int
	failIssue error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: make(map[string]string)}
}

func (f *fakeSessions) Issue(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIssue != nil {
		return "", f.failIssue
	}
	f.next++
	tok := "tok-" + string(rune('a'+f.next))
	f.tokens[tok] = userID
	return tok, nil
}

func (f *fakeSessions) Resolve(_ context.Context, token string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	return id, ok, nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
