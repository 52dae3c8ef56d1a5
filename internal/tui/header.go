package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	apisdk "github.com/hilthontt/devtea/api-sdk"
)

func (m model) HeaderView() string {
	bold := m.theme.TextAccent().Bold(true).Render
	accent := m.theme.TextAccent().Render
	base := m.theme.Base().Render

	logo := bold("devtea") + m.theme.Base().Background(m.theme.Brand()).Render(" ")
	chat := accent("esc") + base(" chat")
	rooms := accent("ctrl+r") + base(" rooms")
	newRoom := accent("ctrl+n") + base(" new room")

	switch m.page {
	case chatPage:
		chat = m.theme.TextHighlight().Render("chat")
	case roomsPage:
		rooms = m.theme.TextHighlight().Render("rooms")
	case newRoomPage:
		newRoom = m.theme.TextHighlight().Render("new room")
	}

	tabs := []string{logo, m.statusView()}
	if m.page != loginPage {
		tabs = []string{logo, chat, rooms, newRoom, m.statusView()}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(m.renderer.NewStyle().Foreground(m.theme.Border())).
		Row(tabs...).
		Width(max(m.viewportWidth, minWidth)).
		StyleFunc(func(row, col int) lipgloss.Style {
			return m.theme.Base().
				Padding(0, 1).
				AlignHorizontal(lipgloss.Center)
		}).
		Render()
}

func (m model) statusView() string {
	if m.conn == nil {
		return m.theme.TextMuted().Render("○ offline")
	}

	switch m.conn.State() {
	case apisdk.StateConnected:
		return m.theme.TextBrand().Render("● " + m.username)
	case apisdk.StatePolling:
		return m.theme.TextBrand().Render("◉ " + m.username)
	case apisdk.StateRegistering:
		return m.theme.TextHighlight().Render("◌ connecting")
	case apisdk.StateError:
		return m.theme.TextError().Render("✕ error")
	}
	return m.theme.TextMuted().Render("○ offline")
}
