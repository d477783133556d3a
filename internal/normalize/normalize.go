// Package normalize coerces loosely-typed records into well-formed domain
// values.
//
// Nothing in this package returns an error. Persisted data may have been
// edited by hand and patch bodies come straight from clients, so unknown or
// missing values are replaced by defaults instead of being rejected.
package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/kanban-board/internal/model"
)

const (
	DefaultPhase = "Uncategorized"
	DefaultTitle = "Untitled Task"
)

// Raw is a decoded JSON object.
type Raw = map[string]any

// Task builds a Task from raw input. index only feeds the fallback priority,
// which cycles through model.Priorities so repaired boards stay varied but
// deterministic.
func Task(raw Raw, index int, users []model.User) model.Task {
	task := model.Task{
		ID:          stringOr(raw, "id", ""),
		Phase:       trimmedOr(raw, "phase", DefaultPhase),
		Title:       trimmedOr(raw, "title", DefaultTitle),
		Description: trimmedOr(raw, "description", ""),
		Status:      model.Status(stringOr(raw, "status", "")),
		Priority:    model.Priority(stringOr(raw, "priority", "")),
		AssigneeID:  assignee(stringOr(raw, "assigneeId", ""), users),
		Comments:    comments(raw["comments"]),
		UpdatedAt:   timeOr(raw, "updatedAt"),
	}

	if task.ID == "" {
		task.ID = xid.New().String()
	}
	if !task.Status.Valid() {
		task.Status = model.StatusTodo
	}
	if !task.Priority.Valid() {
		task.Priority = FallbackPriority(index)
	}
	return task
}

// FallbackPriority is the priority given to a task at position index when it
// has none of its own.
func FallbackPriority(index int) model.Priority {
	if index < 0 {
		index = -index
	}
	return model.Priorities[index%len(model.Priorities)]
}

// Comment builds a Comment from raw input.
func Comment(raw Raw) model.Comment {
	c := model.Comment{
		ID:         stringOr(raw, "id", ""),
		Text:       trimmedOr(raw, "text", ""),
		AuthorID:   stringOr(raw, "authorId", ""),
		AuthorName: stringOr(raw, "authorName", ""),
		CreatedAt:  timeOr(raw, "createdAt"),
	}
	if c.ID == "" {
		c.ID = xid.New().String()
	}
	return c
}

// User builds a User from raw input. It reports false when the record has no
// email, since such a user can never be addressed.
func User(raw Raw) (model.User, bool) {
	u := model.User{
		ID:           stringOr(raw, "id", ""),
		Name:         trimmedOr(raw, "name", ""),
		Email:        strings.ToLower(trimmedOr(raw, "email", "")),
		PasswordHash: stringOr(raw, "passwordHash", ""),
		GitHubID:     idOr(raw, "githubId"),
	}
	if u.Email == "" {
		return model.User{}, false
	}
	if u.ID == "" {
		u.ID = xid.New().String()
	}
	if u.Name == "" {
		u.Name = u.Email
	}
	return u, true
}

// RawDocument is the lenient on-disk shape of a model.Document.
type RawDocument struct {
	Users []any `json:"users"`
	Tasks []any `json:"tasks"`
}

// Document repairs a whole decoded document. Users are normalized first
// (later duplicates of an email are dropped) so task assignees can be checked
// against the surviving ids.
func Document(raw RawDocument) *model.Document {
	doc := &model.Document{Users: []model.User{}, Tasks: []model.Task{}}

	seen := make(map[string]bool)
	for _, item := range raw.Users {
		obj, ok := item.(Raw)
		if !ok {
			continue
		}
		u, ok := User(obj)
		if !ok || seen[u.Email] {
			continue
		}
		seen[u.Email] = true
		doc.Users = append(doc.Users, u)
	}

	for i, item := range raw.Tasks {
		obj, ok := item.(Raw)
		if !ok {
			continue
		}
		doc.Tasks = append(doc.Tasks, Task(obj, i, doc.Users))
	}
	return doc
}

// ToRaw converts a task back into its loosely-typed form, used when merging
// an arbitrary patch over a stored record.
func ToRaw(t model.Task) Raw {
	cs := make([]any, 0, len(t.Comments))
	for _, c := range t.Comments {
		cs = append(cs, Raw{
			"id":         c.ID,
			"text":       c.Text,
			"authorId":   c.AuthorID,
			"authorName": c.AuthorName,
			"createdAt":  c.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return Raw{
		"id":          t.ID,
		"phase":       t.Phase,
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"assigneeId":  t.AssigneeID,
		"comments":    cs,
		"updatedAt":   t.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func assignee(id string, users []model.User) string {
	for _, u := range users {
		if u.ID == id {
			return id
		}
	}
	if len(users) == 0 {
		return ""
	}
	return users[0].ID
}

func comments(v any) []model.Comment {
	out := []model.Comment{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if obj, ok := item.(Raw); ok {
			out = append(out, Comment(obj))
		}
	}
	return out
}

// stringOr treats non-string values as missing.
func stringOr(raw Raw, key, fallback string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return fallback
}

func trimmedOr(raw Raw, key, fallback string) string {
	s := strings.TrimSpace(stringOr(raw, key, ""))
	if s == "" {
		return fallback
	}
	return s
}

// idOr reads a positive whole JSON number. Anything else is 0.
func idOr(raw Raw, key string) int64 {
	f, ok := raw[key].(float64)
	if !ok || f < 1 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}

func timeOr(raw Raw, key string) time.Time {
	if s, ok := raw[key].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
