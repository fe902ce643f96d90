package internal

import (
	"fmt"
	"strings"

	"klocka/internal/app"
	"klocka/internal/product"

	"github.com/charmbracelet/lipgloss"
)

const progressWidth = 24

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	rowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	rowSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	expiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type labels struct {
	title           string
	configTitle     string
	empty           string
	idle            string
	running         string
	expired         string
	expiredNotice   string
	colActive       string
	colName         string
	colHours        string
	colMinutes      string
	namePlaceholder string
	pinPrompt       string
	wrongPIN        string
	timerHelp       string
	kioskHelp       string
	configHelp      string
	editHelp        string
}

var translations = map[string]labels{
	"de": {
		title:           "Klocka",
		configTitle:     "Zeit einstellen",
		empty:           `Keine aktiven Produkte. Bitte unter "Zeit einstellen" konfigurieren.`,
		idle:            "bereit",
		running:         "läuft",
		expired:         "abgelaufen",
		expiredNotice:   "Abgelaufen",
		colActive:       "Aktiv",
		colName:         "Name",
		colHours:        "Std",
		colMinutes:      "Min",
		namePlaceholder: "Produktname",
		pinPrompt:       "PIN eingeben",
		wrongPIN:        "Falsche PIN",
		timerHelp:       "Auswahl: ↑/↓ | Start: Enter/s | Stop: x | Alle stoppen: X | Zeit einstellen: c | Sprache: L | Ende: q",
		kioskHelp:       "Auswahl: ↑/↓ | Start: Enter/s | Stop: x | Alle stoppen: X | Sprache: L",
		configHelp:      "Auswahl: ↑/↓ ←/→ | Bearbeiten: Enter | Aktiv: Leertaste | Neu: n | Löschen: d | Timer: t",
		editHelp:        "Enter: Speichern | Tab: Nächstes Feld | Esc: Abbrechen",
	},
	"en": {
		title:           "Klocka",
		configTitle:     "Set times",
		empty:           `No active products. Configure them under "Set times".`,
		idle:            "ready",
		running:         "running",
		expired:         "expired",
		expiredNotice:   "Expired",
		colActive:       "Active",
		colName:         "Name",
		colHours:        "Hrs",
		colMinutes:      "Min",
		namePlaceholder: "Product name",
		pinPrompt:       "Enter PIN",
		wrongPIN:        "Wrong PIN",
		timerHelp:       "Select: ↑/↓ | Start: Enter/s | Stop: x | Stop all: X | Set times: c | Language: L | Quit: q",
		kioskHelp:       "Select: ↑/↓ | Start: Enter/s | Stop: x | Stop all: X | Language: L",
		configHelp:      "Select: ↑/↓ ←/→ | Edit: Enter | Active: Space | New: n | Delete: d | Timers: t",
		editHelp:        "Enter: Save | Tab: Next field | Esc: Cancel",
	},
}

// progressBar renders fraction (0..1) as a fixed-width bar.
func progressBar(fraction float64, width int) string {
	filled := int(fraction*float64(width) + 0.5)
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func (m *Model) timerView() string {
	l := m.t()
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render(l.title))
	sb.WriteString("\n\n")

	rows := m.app.Rows()
	if len(rows) == 0 {
		sb.WriteString(inactiveStyle.Render(l.empty))
	} else {
		lines := make([]string, 0, len(rows))
		for i, r := range rows {
			lines = append(lines, m.timerRow(r, i == m.Selected))
		}
		sb.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.statusLine())

	help := l.timerHelp
	if m.kiosk {
		help = l.kioskHelp
	}
	sb.WriteString(helpStyle.Render(help))
	return sb.String()
}

func (m *Model) timerRow(r app.Row, selected bool) string {
	l := m.t()

	name := fmt.Sprintf("%-18s", r.Name)
	bar := progressBar(r.Progress, progressWidth)
	remaining := timerDisplayStyle.Render(r.Remaining)
	state := inactiveStyle.Render(l.idle)

	switch {
	case r.Running():
		name = runningStyle.Render(name)
		remaining = runningStyle.Render(r.Remaining)
		state = runningStyle.Render(l.running)
	case r.Expired():
		bar = expiredStyle.Render(bar)
		remaining = expiredStyle.Render(r.Remaining)
		state = expiredStyle.Render(l.expired)
	}

	line := fmt.Sprintf("%s %s %s %s", name, bar, remaining, state)
	if selected {
		return rowSelectedStyle.Render(line)
	}
	return rowStyle.Render(line)
}

func (m *Model) configView() string {
	l := m.t()
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render(l.configTitle))
	sb.WriteString("\n\n")

	header := fmt.Sprintf("%-6s %-20s %4s %4s", l.colActive, l.colName, l.colHours, l.colMinutes)
	lines := []string{helpStyle.Render(header)}
	for i, p := range m.app.Products() {
		lines = append(lines, m.configRow(p, i == m.ConfigSelected))
	}
	sb.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	sb.WriteString("\n\n")
	sb.WriteString(m.statusLine())

	help := l.configHelp
	if m.Editing {
		help = l.editHelp
	}
	sb.WriteString(helpStyle.Render(help))
	return sb.String()
}

func (m *Model) configRow(p product.Product, selected bool) string {
	l := m.t()

	active := "[ ]"
	if p.Active {
		active = "[x]"
	}

	cells := [fieldCount]string{
		fieldName:    p.Name,
		fieldHours:   fmt.Sprintf("%d", p.Hours),
		fieldMinutes: fmt.Sprintf("%d", p.Minutes),
	}
	if cells[fieldName] == "" {
		cells[fieldName] = inactiveStyle.Render(l.namePlaceholder)
	}
	if selected && m.Editing {
		cells[m.Field] = inputStyle.Render(m.Input + "█")
	} else if selected {
		cells[m.Field] = inputStyle.Render("›" + cells[m.Field])
	}

	line := fmt.Sprintf("%-6s %-20s %4s %4s", active, cells[fieldName], cells[fieldHours], cells[fieldMinutes])
	if selected {
		return rowSelectedStyle.Render(line)
	}
	return rowStyle.Render(line)
}

func (m *Model) pinView() string {
	l := m.t()
	masked := strings.Repeat("•", len(m.PINInput))
	form := fmt.Sprintf("%s\n\n%s",
		inputStyle.Render("→ "+l.pinPrompt+": ")+inputStyle.Render(masked+"█"),
		helpStyle.Render("Enter | Esc"),
	)

	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(40).Render(form),
	)
}

func (m *Model) statusLine() string {
	var sb strings.Builder
	if m.Err != nil {
		sb.WriteString(errorStyle.Render(m.Err.Error()))
		sb.WriteString("\n")
	}
	if m.Status != "" {
		sb.WriteString(expiredStyle.Render(m.Status))
		sb.WriteString("\n")
	}
	return sb.String()
}
