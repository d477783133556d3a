// Package board projects a task list into the column view the UI and the
// CLI render: filtering, per-status columns, optional phase swimlanes and
// summary cards.
package board

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sakif/kanban-board/internal/model"
)

// All is the filter value that matches everything.
const All = "all"

// Filter narrows the visible tasks. Empty fields and All match everything.
type Filter struct {
	Phase    string
	Priority string
	Search   string
}

// Match reports whether task passes f. Search is a case-insensitive
// substring match over phase, title, description and assignee name.
func (f Filter) Match(task model.Task, assigneeName string) bool {
	if f.Phase != "" && f.Phase != All && task.Phase != f.Phase {
		return false
	}
	if f.Priority != "" && f.Priority != All && string(task.Priority) != f.Priority {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	searchable := strings.ToLower(strings.Join([]string{task.Phase, task.Title, task.Description, assigneeName}, " "))
	return strings.Contains(searchable, term)
}

// Card is a task with its assignee resolved for display.
type Card struct {
	model.Task
	AssigneeName     string `json:"assigneeName"`
	AssigneeInitials string `json:"assigneeInitials"`
}

type Lane struct {
	Phase string `json:"phase"`
	Tasks []Card `json:"tasks"`
}

type Column struct {
	Status model.Status `json:"status"`
	Label  string       `json:"label"`
	Count  int          `json:"count"`
	Tasks  []Card       `json:"tasks"`
	Lanes  []Lane       `json:"lanes,omitempty"`
}

type SummaryCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type View struct {
	Columns []Column      `json:"columns"`
	Summary []SummaryCard `json:"summary"`
	// Phases lists every phase on the board, ignoring the filter, so the
	// phase picker never loses its current choice.
	Phases []string `json:"phases"`
}

// Project builds the board view. Tasks keep their store order inside each
// column and lane.
func Project(tasks []model.Task, users []model.User, f Filter, lanes bool) View {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	byStatus := make(map[model.Status][]Card, len(model.Statuses))
	var visible []model.Task
	for _, t := range tasks {
		name := names[t.AssigneeID]
		if !f.Match(t, name) {
			continue
		}
		visible = append(visible, t)
		byStatus[t.Status] = append(byStatus[t.Status], Card{
			Task:             t,
			AssigneeName:     name,
			AssigneeInitials: Initials(name),
		})
	}

	view := View{
		Columns: make([]Column, 0, len(model.Statuses)),
		Summary: Summary(visible),
		Phases:  Phases(tasks),
	}
	for _, s := range model.Statuses {
		cards := byStatus[s]
		if cards == nil {
			cards = []Card{}
		}
		col := Column{Status: s, Label: s.Label(), Count: len(cards), Tasks: cards}
		if lanes {
			col.Lanes = groupByPhase(cards)
		}
		view.Columns = append(view.Columns, col)
	}
	return view
}

// Summary returns Total, one card per status and Completion, computed over
// tasks.
func Summary(tasks []model.Task) []SummaryCard {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, t := range tasks {
		counts[t.Status]++
	}

	cards := []SummaryCard{{Label: "Total", Value: fmt.Sprint(len(tasks))}}
	for _, s := range model.Statuses {
		cards = append(cards, SummaryCard{Label: s.Label(), Value: fmt.Sprint(counts[s])})
	}
	return append(cards, SummaryCard{Label: "Completion", Value: fmt.Sprintf("%d%%", Completion(tasks))})
}

// Completion is the rounded percentage of done tasks; 0 for an empty list.
func Completion(tasks []model.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Status == model.StatusDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(tasks)) * 100))
}

// Phases returns the sorted distinct phases of tasks.
func Phases(tasks []model.Task) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, t := range tasks {
		if !seen[t.Phase] {
			seen[t.Phase] = true
			out = append(out, t.Phase)
		}
	}
	sort.Strings(out)
	return out
}

// Initials takes the first letter of up to two words, upper-cased.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		out = append(out, []rune(word)[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}

func groupByPhase(cards []Card) []Lane {
	idx := make(map[string]int)
	var lanes []Lane
	for _, c := range cards {
		i, ok := idx[c.Phase]
		if !ok {
			i = len(lanes)
			idx[c.Phase] = i
			lanes = append(lanes, Lane{Phase: c.Phase})
		}
		lanes[i].Tasks = append(lanes[i].Tasks, c)
	}
	sort.SliceStable(lanes, func(a, b int) bool { return lanes[a].Phase < lanes[b].Phase })
	return lanes
}
