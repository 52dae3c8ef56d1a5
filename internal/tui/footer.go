package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type footerCommand struct {
	key   string
	value string
}

type footerState struct {
	commands []footerCommand
}

func (m model) FooterView() string {
	bold := m.theme.TextAccent().Bold(true).Render
	base := m.theme.Base().Render
	width := max(m.viewportWidth, minWidth)

	commands := make([]string, 0, len(m.state.footer.commands))
	for _, cmd := range m.state.footer.commands {
		commands = append(commands, bold(" "+cmd.key+" ")+base(cmd.value+"  "))
	}

	var status string
	if m.error != nil {
		hint := "esc"
		msg := m.theme.PanelError().Padding(0, 1).Render(wordWrap(m.error.message, width-lipgloss.Width(hint)-6))
		space := max(width-lipgloss.Width(msg)-lipgloss.Width(hint)-2, 0)
		height := lipgloss.Height(msg)

		status = lipgloss.JoinHorizontal(
			lipgloss.Top,
			msg,
			m.theme.PanelError().Width(space).Height(height).Render(),
			m.theme.PanelError().Bold(true).Padding(0, 1).Height(height).Render(hint),
		)
	} else {
		status = m.theme.Base().Faint(true).Render("rooms • direct messages • presence")
	}

	bar := m.theme.Base().
		Width(width).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(m.theme.Border()).
		Align(lipgloss.Center).
		Render(lipgloss.JoinHorizontal(lipgloss.Center, commands...))

	return lipgloss.JoinVertical(lipgloss.Center, status, bar)
}

func wordWrap(text string, maxWidth int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	lines := []string{}
	current := words[0]
	for _, word := range words[1:] {
		if lipgloss.Width(current+" "+word) <= maxWidth {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)

	return strings.Join(lines, "\n")
}
