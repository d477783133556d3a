package board

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/kanban-board/internal/model"
)

var testUsers = []model.User{
	{ID: "u1", Name: "Elena Petrova"},
	{ID: "u2", Name: "Ravi"},
}

func task(id, phase, title string, s model.Status, p model.Priority, assignee string) model.Task {
	return model.Task{ID: id, Phase: phase, Title: title, Description: title + " details", Status: s, Priority: p, AssigneeID: assignee}
}

func testTasks() []model.Task {
	return []model.Task{
		task("1", "Setup", "Install toolchain", model.StatusDone, model.PriorityHigh, "u1"),
		task("2", "Setup", "Clone repos", model.StatusTodo, model.PriorityLow, "u2"),
		task("3", "API", "Write handlers", model.StatusInProgress, model.PriorityHighest, "u1"),
		task("4", "API", "Review routes", model.StatusReview, model.PriorityMedium, "u2"),
		task("5", "Docs", "Onboarding guide", model.StatusTodo, model.PriorityHigh, "u1"),
	}
}

func TestFilter_Match(t *testing.T) {
	tk := task("1", "Setup", "Install toolchain", model.StatusTodo, model.PriorityHigh, "u1")

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"zero filter", Filter{}, true},
		{"all values", Filter{Phase: All, Priority: All}, true},
		{"phase match", Filter{Phase: "Setup"}, true},
		{"phase mismatch", Filter{Phase: "API"}, false},
		{"priority mismatch", Filter{Priority: "low"}, false},
		{"search title case-insensitive", Filter{Search: "TOOLCHAIN"}, true},
		{"search description", Filter{Search: "details"}, true},
		{"search assignee name", Filter{Search: "elena"}, true},
		{"search trimmed", Filter{Search: "  install "}, true},
		{"search miss", Filter{Search: "kubernetes"}, false},
		{"combined", Filter{Phase: "Setup", Priority: "high", Search: "install"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tk, "Elena Petrova"))
		})
	}
}

func TestProject_Columns(t *testing.T) {
	v := Project(testTasks(), testUsers, Filter{}, false)

	require.Len(t, v.Columns, 4)
	wantOrder := []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusReview, model.StatusDone}
	for i, col := range v.Columns {
		assert.Equal(t, wantOrder[i], col.Status)
		assert.Equal(t, col.Status.Label(), col.Label)
		assert.Equal(t, len(col.Tasks), col.Count)
		assert.Nil(t, col.Lanes)
	}

	todo := v.Columns[0]
	require.Len(t, todo.Tasks, 2)
	assert.Equal(t, "2", todo.Tasks[0].ID, "store order is kept")
	assert.Equal(t, "Ravi", todo.Tasks[0].AssigneeName)
	assert.Equal(t, "EP", todo.Tasks[1].AssigneeInitials)
}

func TestProject_FilterKeepsAllPhases(t *testing.T) {
	v := Project(testTasks(), testUsers, Filter{Phase: "API"}, false)

	assert.Equal(t, []string{"API", "Docs", "Setup"}, v.Phases)
	total := 0
	for _, col := range v.Columns {
		total += col.Count
	}
	assert.Equal(t, 2, total)
	assert.Equal(t, SummaryCard{Label: "Total", Value: "2"}, v.Summary[0])
}

func TestProject_EmptyColumnsAreEmptySlices(t *testing.T) {
	v := Project(nil, testUsers, Filter{}, true)
	for _, col := range v.Columns {
		assert.NotNil(t, col.Tasks)
		assert.Empty(t, col.Tasks)
		assert.Empty(t, col.Lanes)
	}
}

func TestProject_Lanes(t *testing.T) {
	tasks := append(testTasks(),
		task("6", "API", "Second todo", model.StatusTodo, model.PriorityLow, "u2"),
	)
	v := Project(tasks, testUsers, Filter{}, true)

	todo := v.Columns[0]
	require.Len(t, todo.Lanes, 3)
	assert.Equal(t, "API", todo.Lanes[0].Phase)
	assert.Equal(t, "Docs", todo.Lanes[1].Phase)
	assert.Equal(t, "Setup", todo.Lanes[2].Phase)
	assert.Equal(t, "6", todo.Lanes[0].Tasks[0].ID)
}

func TestSummary(t *testing.T) {
	got := Summary(testTasks())
	want := []SummaryCard{
		{"Total", "5"},
		{"To Do", "2"},
		{"In Progress", "1"},
		{"In QA", "1"},
		{"Done", "1"},
		{"Completion", "20%"},
	}
	assert.Equal(t, want, got)
}

func TestCompletion(t *testing.T) {
	done := model.Task{Status: model.StatusDone}
	todo := model.Task{Status: model.StatusTodo}

	tests := []struct {
		name  string
		tasks []model.Task
		want  int
	}{
		{"empty", nil, 0},
		{"none done", []model.Task{todo, todo}, 0},
		{"all done", []model.Task{done, done}, 100},
		{"one third rounds down", []model.Task{done, todo, todo}, 33},
		{"two thirds rounds up", []model.Task{done, done, todo}, 67},
		{"half", []model.Task{done, todo}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Completion(tt.tasks))
		})
	}
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Elena Petrova":     "EP",
		"ravi":              "R",
		"Sara Al Mansour":   "SA",
		"  ":                "?",
		"émile zola":        "ÉZ",
		"Omar Farouk Jones": "OF",
	}
	for name, want := range tests {
		assert.Equal(t, want, Initials(name), "Initials(%q)", name)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Project(testTasks(), testUsers, Filter{Phase: "Setup"}, true)))

	out := buf.String()
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "Completion: 50%")
	assert.Contains(t, out, "== To Do (1) ==")
	assert.Contains(t, out, "-- Setup --")
	assert.Contains(t, out, "Clone repos")
	assert.Contains(t, out, "(no tasks in this column)")
	assert.NotContains(t, out, "Write handlers")
}
