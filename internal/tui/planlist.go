package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/jcmrs/warpos/internal/models"
)

var (
	listTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusPending   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	statusExecuting = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
	statusCompleted = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	statusFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
)

// PlanItem implements list.Item for the plan list.
type PlanItem struct {
	PlanID   string
	Template string
	Project  string
	Status   string
}

func (i PlanItem) FilterValue() string { return i.PlanID + " " + i.Template }
func (i PlanItem) Title() string       { return i.Template + "  " + shortID(i.PlanID) }
func (i PlanItem) Description() string {
	return fmt.Sprintf("%s • %s", formatStatus(i.Status), i.Project)
}

func formatStatus(status string) string {
	switch models.PlanStatus(status) {
	case models.PlanStatusPending:
		return statusPending.Render("● pending")
	case models.PlanStatusExecuting:
		return statusExecuting.Render("● executing")
	case models.PlanStatusCompleted:
		return statusCompleted.Render("● completed")
	case models.PlanStatusFailed:
		return statusFailed.Render("● failed")
	default:
		return status
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func newPlanList() list.Model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Execution Plans"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = listTitleStyle
	return l
}
