package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Sternrassler/pokedex-client/pkg/view"
)

const statBarWidth = 24

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFCB05")).
			Background(lipgloss.Color("#3D7DCA")).
			Padding(0, 1)

	listStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3D7DCA")).
			Padding(0, 1).
			Width(34)

	focusedBorder = lipgloss.Color("#FFCB05")

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCB05"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E3350D")).Bold(true)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(48)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// panelStyle colours the details panel after the primary type.
func panelStyle(color string) lipgloss.Style {
	return detailStyle.
		BorderForeground(lipgloss.Color(color)).
		Foreground(lipgloss.Color("#1A1A1A")).
		Background(lipgloss.Color(color))
}

// statBar renders a fixed-width bar for a fill percentage.
func statBar(percent float64) string {
	filled := int(percent/100*statBarWidth + 0.5)
	filled = min(max(filled, 0), statBarWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", statBarWidth-filled)
}

func renderDetail(d view.Detail) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(d.Title))
	b.WriteString("\n\n")
	b.WriteString("Type: " + strings.Join(d.Types, ", ") + "\n")
	if len(d.Abilities) > 0 {
		b.WriteString("Abilities: " + strings.Join(d.Abilities, ", ") + "\n")
	}
	b.WriteString("Height: " + d.Height + "   Weight: " + d.Weight + "\n")

	if len(d.Stats) > 0 {
		b.WriteString("\nBase stats\n")
		for _, s := range d.Stats {
			b.WriteString(padRight(s.Label, 16))
			b.WriteString(statBar(s.Percent))
			b.WriteString(" ")
			b.WriteString(strconv.Itoa(s.Value))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
