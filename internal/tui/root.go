package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	apisdk "github.com/hilthontt/devtea/api-sdk"
	"github.com/hilthontt/devtea/internal/tui/theme"
)

type page = int

const (
	loginPage page = iota
	chatPage
	roomsPage
	newRoomPage
)

const (
	minWidth     = 40
	minHeight    = 12
	sidebarWidth = 24
)

type Config struct {
	Client   *apisdk.Client
	UserID   string
	Username string

	// Highlight overrides the selection color, e.g. "#F59E0B".
	Highlight         *string
	ConnectionOptions []apisdk.ConnectionOption
}

type visibleError struct {
	message string
}

type state struct {
	login   loginState
	chat    chatState
	rooms   roomsState
	newRoom newRoomState
	footer  footerState
}

type model struct {
	context  context.Context
	client   *apisdk.Client
	conn     *apisdk.Connection
	bridge   *eventBridge
	connOpts []apisdk.ConnectionOption

	userID   string
	username string

	page     page
	state    state
	error    *visibleError
	renderer *lipgloss.Renderer
	theme    theme.Theme

	viewportWidth  int
	viewportHeight int
}

// Run starts the terminal client and blocks until the user quits.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	m := newModel(ctx, lipgloss.DefaultRenderer(), cfg)

	final, err := tea.NewProgram(m, opts...).Run()
	if fm, ok := final.(model); ok && fm.conn != nil {
		fm.conn.Close()
	}
	return err
}

func newModel(ctx context.Context, renderer *lipgloss.Renderer, cfg Config) model {
	m := model{
		context:  ctx,
		client:   cfg.Client,
		bridge:   newEventBridge(eventBuffer),
		connOpts: cfg.ConnectionOptions,
		userID:   cfg.UserID,
		username: strings.TrimSpace(cfg.Username),
		page:     loginPage,
		renderer: renderer,
		theme:    theme.BasicTheme(renderer, cfg.Highlight),
	}
	m = m.initLogin()
	m = m.initChat()
	if m.username != "" {
		m = m.dial(m.username)
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.conn != nil {
		return tea.Batch(m.bridge.listen(), m.connectCmd())
	}
	return tea.Batch(m.bridge.listen(), m.LoginInit())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case visibleError:
		m.error = &msg
		m.state.login.connecting = false
		m.state.newRoom.creating = false
		return m, nil
	case connectionEventMsg:
		var cmd tea.Cmd
		m, cmd = m.applyEvent(msg.event)
		return m, tea.Batch(cmd, m.bridge.listen())
	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
		m = m.resizeChat()
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Back):
			if m.error != nil {
				m.error = nil
				return m, nil
			}
			if m.page == roomsPage || m.page == newRoomPage {
				return m.ChatSwitch()
			}
		case key.Matches(msg, keys.RoomsPage):
			if m.connected() && m.page != roomsPage {
				return m.RoomsSwitch()
			}
		case key.Matches(msg, keys.NewRoomPage):
			if m.connected() && m.page != newRoomPage {
				return m.NewRoomSwitch()
			}
		}
	}

	var cmd tea.Cmd
	switch m.page {
	case loginPage:
		m, cmd = m.LoginUpdate(msg)
	case chatPage:
		m, cmd = m.ChatUpdate(msg)
	case roomsPage:
		m, cmd = m.RoomsUpdate(msg)
	case newRoomPage:
		m, cmd = m.NewRoomUpdate(msg)
	}

	return m, cmd
}

func (m model) View() string {
	if m.viewportWidth > 0 && (m.viewportWidth < minWidth || m.viewportHeight < minHeight) {
		return m.ResizeView()
	}

	var content string
	switch m.page {
	case loginPage:
		content = m.LoginView()
	case chatPage:
		content = m.ChatView()
	case roomsPage:
		content = m.RoomsView()
	case newRoomPage:
		content = m.NewRoomView()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.HeaderView(),
		content,
		m.FooterView(),
	)
}

func (m model) ResizeView() string {
	return m.renderer.Place(
		m.viewportWidth,
		m.viewportHeight,
		lipgloss.Center,
		lipgloss.Center,
		m.theme.TextAccent().Render("Terminal too small, please resize."),
	)
}

func (m model) SwitchPage(p page) model {
	m.page = p
	m.error = nil
	return m
}

func (m model) connected() bool {
	if m.conn == nil {
		return false
	}
	switch m.conn.State() {
	case apisdk.StateConnected, apisdk.StatePolling:
		return true
	}
	return false
}

// run executes fn off the UI goroutine. Results arrive as connection events;
// errors are shown in the footer.
func (m model) run(fn func(ctx context.Context, conn *apisdk.Connection) error) tea.Cmd {
	ctx, conn := m.context, m.conn
	if conn == nil {
		return nil
	}
	return func() tea.Msg {
		if err := fn(ctx, conn); err != nil {
			return visibleError{message: err.Error()}
		}
		return nil
	}
}

func (m model) contentHeight() int {
	// header and footer take three lines each
	return max(m.viewportHeight-6, 1)
}
