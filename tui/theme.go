package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"taskboard/model"
	"taskboard/view"
)

// Palette holds the styles for one theme. The CLI renders with the same
// palette as the terminal UI.
type Palette struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Overdue  lipgloss.Style
	DueSoon  lipgloss.Style
	Label    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Prompt   lipgloss.Style
	Border   lipgloss.Color
	Focus    lipgloss.Color

	high   lipgloss.Style
	medium lipgloss.Style
	low    lipgloss.Style
}

func PaletteFor(t model.Theme) Palette {
	if t == model.ThemeDark {
		return Palette{
			Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Accent:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111")),
			Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
			Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
			Overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			DueSoon:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
			Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("70")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
			Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			Border:   lipgloss.Color("240"),
			Focus:    lipgloss.Color("39"),
			high:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			medium:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			low:      lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		}
	}
	return Palette{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("24")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Accent:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("130")),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		DueSoon:  lipgloss.NewStyle().Foreground(lipgloss.Color("136")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("31")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		Border:   lipgloss.Color("250"),
		Focus:    lipgloss.Color("33"),
		high:     lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		medium:   lipgloss.NewStyle().Foreground(lipgloss.Color("136")),
		low:      lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
	}
}

// Priority renders the priority marker.
func (p Palette) Priority(pr model.Priority) string {
	switch pr {
	case model.PriorityHigh:
		return p.high.Render("●")
	case model.PriorityMedium:
		return p.medium.Render("●")
	case model.PriorityLow:
		return p.low.Render("●")
	}
	return p.Muted.Render("•")
}

// Status renders the checkbox for an item status.
func (p Palette) Status(s model.Status) string {
	switch s {
	case model.StatusCompleted:
		return p.Success.Render("[x]")
	case model.StatusInProgress:
		return p.DueSoon.Render("[~]")
	}
	return "[ ]"
}

// Due renders the relative due date, coloured when overdue or due soon.
// Items without a due date render as "".
func (p Palette) Due(it model.Item, now time.Time) string {
	if it.DueDate == nil {
		return ""
	}
	text := view.RelativeDate(it.DueDate, now)
	switch {
	case it.Status == model.StatusCompleted:
		return p.Muted.Render(text)
	case view.IsOverdue(it.DueDate, now):
		return p.Overdue.Render(text)
	case view.IsDueSoon(it.DueDate, now):
		return p.DueSoon.Render(text)
	}
	return p.Muted.Render(text)
}

func (p Palette) Labels(labels []string) string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, p.Label.Render("#"+l))
	}
	return strings.Join(out, " ")
}
