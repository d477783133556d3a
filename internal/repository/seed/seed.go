// Package seed builds the default board written on first run.
package seed

import (
	"time"

	"github.com/rs/xid"

	"github.com/sakif/kanban-board/internal/model"
)

// Users are the default team members. They have no password, so they can be
// assigned work but cannot sign in until someone registers their own account.
func Users() []model.User {
	return []model.User{
		{ID: "elena", Name: "Elena", Email: "elena@onboarding.local"},
		{ID: "ravi", Name: "Ravi", Email: "ravi@onboarding.local"},
		{ID: "sara", Name: "Sara", Email: "sara@onboarding.local"},
		{ID: "david", Name: "David", Email: "david@onboarding.local"},
		{ID: "omar", Name: "Omar", Email: "omar@onboarding.local"},
	}
}

var baseTasks = [][3]string{
	{"1. SALES & PRE-SALES", "First Customer Call", "SOC Presentation of capabilities"},
	{"1. SALES & PRE-SALES", "Collect Source Details", "Share sheet to collect source details"},
	{"1. SALES & PRE-SALES", "Estimate Size & Cost", "Calculate SOC cost based on EPS/GB"},
	{"2. ONBOARDING & ACCESS", "Share Process Docs", "Customer process docs for Azure Lighthouse & FreshService"},
	{"2. ONBOARDING & ACCESS", "Customer Accepts Lighthouse", "Wait for customer approval on Azure"},
	{"3. INTEGRATION", "Content Hub Connectors", "Install all data connectors"},
	{"3. INTEGRATION", "Server Integration", "Onboard all Linux and Windows servers"},
	{"4. CONFIGURATION & USE CASES", "Enable Use Cases", "Prefix Customer_SOC(DeviceName)"},
	{"4. CONFIGURATION & USE CASES", "Custom Workbooks", "Build custom visualizations"},
	{"5. AUTOMATION & RESPONSE", "Enable Playbooks", "Activate standard response playbooks"},
	{"5. AUTOMATION & RESPONSE", "Email Notifications", "Configure alert routing"},
	{"6. GO LIVE & SUSTAIN", "Go Live Mail", "Send formal project completion mail"},
}

// Tasks returns the onboarding checklist, spread across columns, priorities
// and assignees so a fresh board is not one long To Do column.
func Tasks(users []model.User) []model.Task {
	now := time.Now().UTC()
	tasks := make([]model.Task, 0, len(baseTasks))
	for i, bt := range baseTasks {
		task := model.Task{
			ID:          xid.New().String(),
			Phase:       bt[0],
			Title:       bt[1],
			Description: bt[2],
			Status:      statusFor(i),
			Priority:    model.Priorities[i%len(model.Priorities)],
			Comments:    []model.Comment{},
			UpdatedAt:   now,
		}
		if len(users) > 0 {
			task.AssigneeID = users[i%len(users)].ID
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func statusFor(i int) model.Status {
	switch {
	case i%6 == 0:
		return model.StatusInProgress
	case i%9 == 0:
		return model.StatusDone
	case i%4 == 0:
		return model.StatusReview
	default:
		return model.StatusTodo
	}
}

// Document is the full default board.
func Document() *model.Document {
	users := Users()
	return &model.Document{Users: users, Tasks: Tasks(users)}
}
