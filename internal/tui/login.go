package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	apisdk "github.com/hilthontt/devtea/api-sdk"
)

type loginState struct {
	input      textinput.Model
	connecting bool
}

func (m model) initLogin() model {
	ti := textinput.New()
	ti.Placeholder = "Pick a username"
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 32
	ti.PromptStyle = m.theme.TextBrand()
	ti.TextStyle = m.theme.TextAccent()
	ti.PlaceholderStyle = m.theme.TextMuted()

	m.state.login = loginState{input: ti}
	m.state.footer.commands = []footerCommand{
		{key: "enter", value: "connect"},
		{key: "ctrl+c", value: "quit"},
	}
	return m
}

func (m model) LoginInit() tea.Cmd {
	return textinput.Blink
}

// dial replaces the connection with one for username. It does not connect.
func (m model) dial(username string) model {
	if m.conn != nil {
		m.conn.Close()
	}
	m.username = username
	m.conn = apisdk.NewConnection(m.client.Chat, m.userID, username, m.bridge.handle, m.connOpts...)
	m.state.login.connecting = true
	return m
}

// connectCmd registers the user. The outcome arrives as a connected or
// connection_failed event.
func (m model) connectCmd() tea.Cmd {
	ctx, conn := m.context, m.conn
	return func() tea.Msg {
		_ = conn.Connect(ctx)
		return nil
	}
}

func (m model) LoginUpdate(msg tea.Msg) (model, tea.Cmd) {
	s := &m.state.login

	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Enter) {
		if s.connecting {
			return m, nil
		}
		username := strings.TrimSpace(s.input.Value())
		if username == "" {
			return m.fail("Username cannot be empty")
		}
		m = m.dial(username)
		return m, m.connectCmd()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return m, cmd
}

func (m model) LoginView() string {
	s := m.state.login

	sections := []string{
		m.theme.TextBrand().Bold(true).Render("☕ DevTea"),
		"",
		m.theme.TextBody().Render("Chat rooms and direct messages for developers."),
		"",
	}

	if s.connecting {
		sections = append(sections, m.theme.TextHighlight().Render("Connecting as "+m.username+"..."))
	} else {
		sections = append(sections,
			m.theme.TextAccent().Render("Username:"),
			s.input.View(),
		)
	}

	width := max(m.viewportWidth, minWidth)
	return m.theme.Base().
		Width(width).
		Height(m.contentHeight()).
		AlignHorizontal(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, sections...))
}
