package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/sakif/kanban-board/internal/apperror"
	"github.com/sakif/kanban-board/internal/board"
	"github.com/sakif/kanban-board/internal/model"
	"github.com/sakif/kanban-board/internal/normalize"
	"github.com/sakif/kanban-board/internal/repository"
)

const MaxCommentLength = 2000

// immutableFields are dropped from update patches.
var immutableFields = []string{"id", "comments", "updatedAt"}

// TaskService handles task CRUD, comments and the board projection.
type TaskService struct {
	store    repository.Store
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewTaskService(store repository.Store, logger *slog.Logger) *TaskService {
	return &TaskService{
		store:    store,
		validate: newValidator(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateTaskInput struct {
	Phase       string `json:"phase" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assigneeId"`
}

// List returns every task in store order.
func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/task: loading tasks: %w", err)
	}
	return doc.Tasks, nil
}

// Create adds a task at the top of the board. New tasks always start in
// todo; priority and assignee are repaired like any other input.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (model.Task, error) {
	in.Phase = strings.TrimSpace(in.Phase)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return model.Task{}, validationError(err)
	}

	var task model.Task
	err := s.store.Update(ctx, func(doc *model.Document) error {
		task = normalize.Task(normalize.Raw{
			"phase":       in.Phase,
			"title":       in.Title,
			"description": in.Description,
			"status":      string(model.StatusTodo),
			"priority":    in.Priority,
			"assigneeId":  in.AssigneeID,
		}, 0, doc.Users)
		task.ID = xid.New().String()
		task.UpdatedAt = s.now()
		doc.Tasks = append([]model.Task{task}, doc.Tasks...)
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}

	s.logger.Info("task created", slog.String("taskID", task.ID), slog.String("phase", task.Phase))
	return task, nil
}

// Update merges patch over the stored task and re-normalizes the result.
// Identity, comments and the timestamp cannot be patched. Applying the same
// patch twice yields the same task apart from updatedAt.
func (s *TaskService) Update(ctx context.Context, id string, patch map[string]any) (model.Task, error) {
	if patch == nil {
		return model.Task{}, apperror.ValidationFailed("", "request body must be a JSON object")
	}

	var task model.Task
	err := s.store.Update(ctx, func(doc *model.Document) error {
		idx := doc.TaskIndex(id)
		if idx < 0 {
			return apperror.NotFound("task", id)
		}
		existing := doc.Tasks[idx]

		raw := normalize.ToRaw(existing)
		for k, v := range patch {
			raw[k] = v
		}
		for _, k := range immutableFields {
			delete(raw, k)
		}

		task = normalize.Task(raw, idx, doc.Users)
		task.ID = existing.ID
		task.Comments = existing.Comments
		task.UpdatedAt = s.now()
		doc.Tasks[idx] = task
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}

	s.logger.Info("task updated", slog.String("taskID", task.ID), slog.String("status", string(task.Status)))
	return task, nil
}

// AddComment appends a comment by userID. Text is checked before the task is
// looked up, so an empty comment on a missing task is a validation error.
func (s *TaskService) AddComment(ctx context.Context, taskID, userID, text string) (model.Task, model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, model.Comment{}, apperror.ValidationFailed("text", "Comment text is required")
	}
	if len([]rune(text)) > MaxCommentLength {
		return model.Task{}, model.Comment{}, apperror.ValidationFailed("text",
			fmt.Sprintf("Comment must be %d characters or fewer", MaxCommentLength))
	}

	var (
		task    model.Task
		comment model.Comment
	)
	err := s.store.Update(ctx, func(doc *model.Document) error {
		idx := doc.TaskIndex(taskID)
		if idx < 0 {
			return apperror.NotFound("task", taskID)
		}
		author, ok := doc.UserByID(userID)
		if !ok {
			return apperror.Unauthorized("Unauthorized")
		}

		now := s.now()
		comment = model.Comment{
			ID:         xid.New().String(),
			Text:       text,
			AuthorID:   author.ID,
			AuthorName: author.Name,
			CreatedAt:  now,
		}
		t := &doc.Tasks[idx]
		t.Comments = append(t.Comments, comment)
		t.UpdatedAt = now
		task = *t
		return nil
	})
	if err != nil {
		return model.Task{}, model.Comment{}, err
	}

	s.logger.Info("comment added", slog.String("taskID", taskID), slog.String("userID", userID))
	return task, comment, nil
}

// Board projects the current tasks through f.
func (s *TaskService) Board(ctx context.Context, f board.Filter, lanes bool) (board.View, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return board.View{}, fmt.Errorf("service/task: loading board: %w", err)
	}
	return board.Project(doc.Tasks, doc.Users, f, lanes), nil
}
