// Package model defines the data structures used throughout the application.
package model

import "time"

// Status is the kanban column a task currently occupies.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses lists the columns in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

var statusLabels = map[Status]string{
	StatusTodo:       "To Do",
	StatusInProgress: "In Progress",
	StatusReview:     "In QA",
	StatusDone:       "Done",
}

// Label is the column heading shown on the board.
func (s Status) Label() string {
	return statusLabels[s]
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Priority ranks a task from highest to low.
type Priority string

const (
	PriorityHighest Priority = "highest"
	PriorityHigh    Priority = "high"
	PriorityMedium  Priority = "medium"
	PriorityLow     Priority = "low"
)

// Priorities is ordered; the normalizer cycles through it by index.
var Priorities = []Priority{PriorityHighest, PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Task is a card on the board.
type Task struct {
	ID          string    `json:"id"`
	Phase       string    `json:"phase"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	AssigneeID  string    `json:"assigneeId"`
	Comments    []Comment `json:"comments"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment is append-only; AuthorName is a snapshot taken when it was posted.
type Comment struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}
