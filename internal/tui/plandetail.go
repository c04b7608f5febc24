package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jcmrs/warpos/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginTop(1)
)

// renderPlan produces the detail view body for one plan, plus any
// execution output recorded this session.
func renderPlan(p *models.ExecutionPlan, results []string) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s@%d", p.TemplateID, p.TemplateVersion)))
	b.WriteString("\n\n")

	b.WriteString(renderField("Plan", p.PlanID))
	b.WriteString(renderField("Instance", p.InstanceID))
	b.WriteString(renderField("Project", p.ProjectSlug))
	b.WriteString(renderField("Status", formatStatus(string(p.Status))))
	b.WriteString(renderField("Created", p.CreatedAt.Format("2006-01-02 15:04:05")))

	b.WriteString(sectionStyle.Render("Steps"))
	b.WriteString("\n")
	for i, step := range p.Steps {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step.Instruction))
	}

	if len(p.Verification) > 0 {
		b.WriteString(sectionStyle.Render("Verification"))
		b.WriteString("\n")
		for _, v := range p.Verification {
			b.WriteString(fmt.Sprintf("  $ %s\n", v.Command))
		}
	}

	if p.DomainFramework != "" {
		b.WriteString(sectionStyle.Render("Domain Guidance"))
		b.WriteString("\n")
		b.WriteString(p.DomainFramework)
		if !strings.HasSuffix(p.DomainFramework, "\n") {
			b.WriteString("\n")
		}
	}

	if len(results) > 0 {
		b.WriteString(sectionStyle.Render("Execution Output"))
		b.WriteString("\n")
		for _, line := range results {
			b.WriteString("  " + line + "\n")
		}
	}

	return b.String()
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}
