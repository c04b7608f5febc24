// Package tui provides the interactive plan review terminal UI.
//
// The flow mirrors the intended operating loop: browse plans, open one,
// read every step and verification entry, then give the explicit go
// decision that releases execution.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jcmrs/warpos/internal/models"
	"github.com/jcmrs/warpos/internal/plan"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(0, 1)
)

// App is the main TUI application model.
type App struct {
	executor *plan.Executor

	list     list.Model
	viewport viewport.Model
	mode     string // "list", "detail", "confirm"

	current   *models.ExecutionPlan
	results   []string
	message   string
	width     int
	height    int
	executing bool
}

// New creates the plan review application over an executor.
func New(executor *plan.Executor) *App {
	return &App{
		executor: executor,
		list:     newPlanList(),
		viewport: viewport.New(80, 20),
		mode:     "list",
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type plansLoadedMsg struct {
	items []list.Item
}

type planLoadedMsg struct {
	plan *models.ExecutionPlan
}

type executedMsg struct {
	result *plan.Result
}

type errMsg struct {
	err error
}

func (a *App) Init() tea.Cmd {
	return a.refreshPlans()
}

func (a *App) refreshPlans() tea.Cmd {
	return func() tea.Msg {
		ids, err := a.executor.ListPlans()
		if err != nil {
			return errMsg{err}
		}
		items := make([]list.Item, 0, len(ids))
		for _, id := range ids {
			p, err := a.executor.GetPlan(id)
			if err != nil {
				continue
			}
			items = append(items, PlanItem{
				PlanID:   p.PlanID,
				Template: fmt.Sprintf("%s@%d", p.TemplateID, p.TemplateVersion),
				Project:  p.ProjectSlug,
				Status:   string(p.Status),
			})
		}
		return plansLoadedMsg{items}
	}
}

func (a *App) loadPlan(id string) tea.Cmd {
	return func() tea.Msg {
		p, err := a.executor.GetPlan(id)
		if err != nil {
			return errMsg{err}
		}
		return planLoadedMsg{p}
	}
}

func (a *App) executePlan(id string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.executor.Execute(context.Background(), id)
		if err != nil {
			return errMsg{err}
		}
		return executedMsg{result}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(msg.Width, msg.Height-2)
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 3
		return a, nil

	case plansLoadedMsg:
		a.list.SetItems(msg.items)
		return a, nil

	case planLoadedMsg:
		a.current = msg.plan
		a.results = nil
		a.mode = "detail"
		a.viewport.SetContent(renderPlan(a.current, a.results))
		a.viewport.GotoTop()
		return a, nil

	case executedMsg:
		a.executing = false
		a.current = msg.result.Plan
		a.results = msg.result.Results
		a.mode = "detail"
		a.message = "Plan executed."
		a.viewport.SetContent(renderPlan(a.current, a.results))
		return a, a.refreshPlans()

	case errMsg:
		a.executing = false
		if a.mode == "confirm" {
			a.mode = "detail"
		}
		a.message = errorStyle.Render(msg.err.Error())
		if a.current != nil {
			// Terminal state may have changed underneath us.
			if p, err := a.executor.GetPlan(a.current.PlanID); err == nil {
				a.current = p
				a.viewport.SetContent(renderPlan(a.current, a.results))
			}
		}
		return a, a.refreshPlans()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Never steal keys while the list filter is open.
	if a.mode == "list" && a.list.FilterState() == list.Filtering {
		return a.forward(msg)
	}

	switch a.mode {
	case "list":
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "r":
			return a, a.refreshPlans()
		case "enter":
			if item, ok := a.list.SelectedItem().(PlanItem); ok {
				a.message = ""
				return a, a.loadPlan(item.PlanID)
			}
		}

	case "detail":
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "esc":
			a.mode = "list"
			a.message = ""
			return a, a.refreshPlans()
		case "r":
			return a, a.loadPlan(a.current.PlanID)
		case "x":
			if a.current.Status == models.PlanStatusPending {
				a.mode = "confirm"
			} else {
				a.message = "Only a pending plan can be executed."
			}
			return a, nil
		}

	case "confirm":
		switch msg.String() {
		case "y":
			a.mode = "detail"
			a.executing = true
			a.message = "Executing..."
			return a, a.executePlan(a.current.PlanID)
		case "n", "esc":
			a.mode = "detail"
			a.message = ""
			return a, nil
		}
		return a, nil
	}

	return a.forward(msg)
}

func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.mode {
	case "list":
		a.list, cmd = a.list.Update(msg)
	case "detail":
		a.viewport, cmd = a.viewport.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	switch a.mode {
	case "confirm":
		prompt := fmt.Sprintf("Execute plan %s?\n\nThis runs exactly once; a failed plan stays failed.\n\n[y] go  [n] no-go", shortID(a.current.PlanID))
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, confirmStyle.Render(prompt))

	case "detail":
		help := helpStyle.Render("x execute • r reload • esc back • q quit")
		status := a.message
		if status == "" {
			status = help
		}
		return a.viewport.View() + "\n" + status

	default:
		help := helpStyle.Render("enter open • r refresh • q quit")
		status := a.message
		if status == "" {
			status = help
		}
		return a.list.View() + "\n" + status
	}
}
