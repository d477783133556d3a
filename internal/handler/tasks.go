package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/kanban-board/internal/apperror"
	"github.com/sakif/kanban-board/internal/auth"
	"github.com/sakif/kanban-board/internal/board"
	"github.com/sakif/kanban-board/internal/model"
	"github.com/sakif/kanban-board/internal/service"
)

// TaskService is the part of service.TaskService the handlers use.
type TaskService interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, in service.CreateTaskInput) (model.Task, error)
	Update(ctx context.Context, id string, patch map[string]any) (model.Task, error)
	AddComment(ctx context.Context, taskID, userID, text string) (model.Task, model.Comment, error)
	Board(ctx context.Context, f board.Filter, lanes bool) (board.View, error)
}

type TaskHandler struct {
	tasks    TaskService
	logger   *slog.Logger
	maxBytes int64
}

func NewTaskHandler(svc TaskService, maxBytes int64, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: svc, logger: logger, maxBytes: maxBytes}
}

// HandleList returns every task.
//
// HTTP: GET /api/tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// HandleCreate adds a task. Any status in the body is ignored.
//
// HTTP: POST /api/tasks
// REQUEST BODY: {"phase","title","description","priority","assigneeId"}
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateTaskInput
	if err := decodeJSON(w, r, h.maxBytes, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"task": task})
}

// HandleUpdate merges a partial task into the stored one.
//
// HTTP: PUT /api/tasks/{id}
// REQUEST BODY: any JSON object, e.g. {"status": "review"}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := decodeJSON(w, r, h.maxBytes, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	patch, ok := body.(map[string]any)
	if !ok {
		writeError(w, h.logger, apperror.ValidationFailed("", "Request body must be a JSON object"))
		return
	}

	task, err := h.tasks.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

// HandleAddComment posts a comment as the authenticated user.
//
// HTTP: POST /api/tasks/{id}/comments
// REQUEST BODY: {"text": "looks good"}
func (h *TaskHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, h.maxBytes, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	task, comment, err := h.tasks.AddComment(r.Context(), chi.URLParam(r, "id"), userID, in.Text)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"task": task, "comment": comment})
}

// HandleBoard returns the projected board.
//
// HTTP: GET /api/board?phase=API&priority=high&q=review&lanes=1
func (h *TaskHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := board.Filter{
		Phase:    q.Get("phase"),
		Priority: q.Get("priority"),
		Search:   q.Get("q"),
	}
	lanes := q.Get("lanes") == "1" || q.Get("lanes") == "true"

	view, err := h.tasks.Board(r.Context(), f, lanes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"board": view})
}
