package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	apisdk "github.com/hilthontt/devtea/api-sdk"
)

type roomsState struct {
	input   textinput.Model
	query   string
	listing []apisdk.RoomListing
	cursor  int
	loading bool
}

func (m model) RoomsSwitch() (model, tea.Cmd) {
	m = m.SwitchPage(roomsPage)
	m = m.initRooms()
	return m, tea.Batch(textinput.Blink, m.searchRooms(""))
}

func (m model) initRooms() model {
	ti := textinput.New()
	ti.Placeholder = "Search rooms..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40
	ti.PromptStyle = m.theme.TextBrand()
	ti.TextStyle = m.theme.TextAccent()
	ti.PlaceholderStyle = m.theme.TextMuted()

	m.state.rooms = roomsState{
		input:   ti,
		loading: true,
	}

	m.state.footer.commands = []footerCommand{
		{key: "↑/↓", value: "select"},
		{key: "enter", value: "search/join"},
		{key: "esc", value: "back"},
	}
	return m
}

// searchRooms lists every room for an empty query.
func (m model) searchRooms(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	return m.run(func(ctx context.Context, conn *apisdk.Connection) error {
		if query == "" {
			_, err := conn.GetRooms(ctx)
			return err
		}
		_, err := conn.SearchRooms(ctx, query)
		return err
	})
}

func (m model) setRoomListing(listing []apisdk.RoomListing) model {
	m.state.rooms.listing = listing
	m.state.rooms.loading = false
	m.state.rooms.cursor = min(m.state.rooms.cursor, max(len(listing)-1, 0))
	return m
}

func (m model) RoomsUpdate(msg tea.Msg) (model, tea.Cmd) {
	s := &m.state.rooms

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			s.cursor = max(s.cursor-1, 0)
			return m, nil
		case key.Matches(msg, keys.Down):
			s.cursor = min(s.cursor+1, max(len(s.listing)-1, 0))
			return m, nil
		case key.Matches(msg, keys.Enter):
			value := strings.TrimSpace(s.input.Value())
			if value != s.query {
				s.query = value
				s.cursor = 0
				s.loading = true
				return m, m.searchRooms(value)
			}
			if len(s.listing) == 0 {
				return m, nil
			}
			roomID := s.listing[s.cursor].ID
			return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
				_, err := conn.JoinRoom(ctx, roomID)
				return err
			})
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return m, cmd
}

func (m model) RoomsView() string {
	s := m.state.rooms

	sections := []string{
		m.theme.TextBrand().Bold(true).Render("Rooms"),
		"",
		s.input.View(),
		"",
	}

	switch {
	case s.loading:
		sections = append(sections, m.theme.TextHighlight().Render("Loading rooms..."))
	case len(s.listing) == 0:
		sections = append(sections, m.theme.TextBody().Render("No rooms match."))
	}

	for i, room := range s.listing {
		name := fmt.Sprintf("#%-16s %s", room.ID, room.Name)
		meta := fmt.Sprintf(" %d members", room.MemberCount)
		if room.IsJoined || room.IsMember {
			meta += " • joined"
		}

		line := m.theme.TextBody().Render("  "+name) + m.theme.TextMuted().Render(meta)
		if i == s.cursor {
			line = m.theme.TextHighlight().Bold(true).Render("› "+name) + m.theme.TextMuted().Render(meta)
			if room.Description != "" {
				line += "\n" + m.theme.TextBody().Faint(true).Render("    "+room.Description)
			}
		}
		sections = append(sections, line)
	}

	return m.theme.Base().
		Width(max(m.viewportWidth, minWidth)).
		Height(m.contentHeight()).
		PaddingLeft(2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
