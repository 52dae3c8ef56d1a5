package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	apisdk "github.com/hilthontt/devtea/api-sdk"
)

const (
	nameField = iota
	descriptionField
)

type newRoomState struct {
	inputs   []textinput.Model
	active   int
	creating bool
}

func (m model) NewRoomSwitch() (model, tea.Cmd) {
	m = m.SwitchPage(newRoomPage)
	m = m.initNewRoom()
	return m, textinput.Blink
}

func (m model) initNewRoom() model {
	name := textinput.New()
	name.Placeholder = "Room name"
	name.CharLimit = 50
	name.Width = 40
	name.Focus()

	description := textinput.New()
	description.Placeholder = "What is it about? (optional)"
	description.CharLimit = 200
	description.Width = 40

	inputs := []textinput.Model{name, description}
	for i := range inputs {
		inputs[i].PromptStyle = m.theme.TextBrand()
		inputs[i].TextStyle = m.theme.TextAccent()
		inputs[i].PlaceholderStyle = m.theme.TextMuted()
	}

	m.state.newRoom = newRoomState{inputs: inputs}
	m.state.footer.commands = []footerCommand{
		{key: "tab", value: "next field"},
		{key: "enter", value: "create"},
		{key: "esc", value: "back"},
	}
	return m
}

func (m model) NewRoomUpdate(msg tea.Msg) (model, tea.Cmd) {
	s := &m.state.newRoom

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Tab):
			s.inputs[s.active].Blur()
			s.active = (s.active + 1) % len(s.inputs)
			return m, s.inputs[s.active].Focus()
		case key.Matches(msg, keys.Enter):
			if s.creating {
				return m, nil
			}
			name := strings.TrimSpace(s.inputs[nameField].Value())
			if name == "" {
				return m.fail("Room name cannot be empty")
			}
			description := strings.TrimSpace(s.inputs[descriptionField].Value())

			s.creating = true
			m.error = nil
			return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
				_, err := conn.CreateRoom(ctx, name, description)
				return err
			})
		}
	}

	var cmd tea.Cmd
	s.inputs[s.active], cmd = s.inputs[s.active].Update(msg)
	return m, cmd
}

func (m model) NewRoomView() string {
	s := m.state.newRoom

	sections := []string{
		m.theme.TextBrand().Bold(true).Render("Create New Room"),
		"",
		m.theme.TextBody().Render("Rooms are public. You join the room you create."),
		"",
		m.theme.TextAccent().Render("Name:"),
		s.inputs[nameField].View(),
		"",
		m.theme.TextAccent().Render("Description:"),
		s.inputs[descriptionField].View(),
	}

	if s.creating {
		sections = append(sections, "", m.theme.TextHighlight().Render("Creating room..."))
	}

	return m.theme.Base().
		Width(max(m.viewportWidth, minWidth)).
		Height(m.contentHeight()).
		PaddingLeft(2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
