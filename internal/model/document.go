package model

import "strings"

// Document is the unit of persistence: every mutation reads, modifies and
// writes the whole thing.
type Document struct {
	Users []User `json:"users"`
	Tasks []Task `json:"tasks"`
}

// Clone returns a deep copy so callers can mutate it without touching the
// store's state.
func (d *Document) Clone() *Document {
	out := &Document{
		Users: append([]User(nil), d.Users...),
		Tasks: make([]Task, len(d.Tasks)),
	}
	for i, t := range d.Tasks {
		t.Comments = append([]Comment(nil), t.Comments...)
		out.Tasks[i] = t
	}
	if out.Users == nil {
		out.Users = []User{}
	}
	return out
}

func (d *Document) UserByID(id string) (*User, bool) {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i], true
		}
	}
	return nil, false
}

// UserByEmail matches case-insensitively.
func (d *Document) UserByEmail(email string) (*User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range d.Users {
		if d.Users[i].Email == email {
			return &d.Users[i], true
		}
	}
	return nil, false
}

// UserByGitHubID finds the account linked to a GitHub user. Zero never
// matches.
func (d *Document) UserByGitHubID(id int64) (*User, bool) {
	if id == 0 {
		return nil, false
	}
	for i := range d.Users {
		if d.Users[i].GitHubID == id {
			return &d.Users[i], true
		}
	}
	return nil, false
}

// TaskIndex returns the position of the task with the given id, or -1.
func (d *Document) TaskIndex(id string) int {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
