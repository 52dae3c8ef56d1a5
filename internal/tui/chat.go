package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	apisdk "github.com/hilthontt/devtea/api-sdk"
)

const messageCharLimit = 1000

type chatState struct {
	joined      []string
	focus       apisdk.Target
	messages    []apisdk.Message
	memberCount int
	roster      []apisdk.RoomMember
	online      []apisdk.OnlineUser

	transcript viewport.Model
	input      textinput.Model
}

func (m model) initChat() model {
	ti := textinput.New()
	ti.Placeholder = "Message, or /help"
	ti.CharLimit = messageCharLimit
	ti.PromptStyle = m.theme.TextBrand()
	ti.TextStyle = m.theme.TextAccent()
	ti.PlaceholderStyle = m.theme.TextMuted()

	m.state.chat = chatState{
		transcript: viewport.New(minWidth, minHeight),
		input:      ti,
	}
	return m
}

func (m model) ChatSwitch() (model, tea.Cmd) {
	m = m.SwitchPage(chatPage)
	m.state.chat.input.Focus()
	m.state.footer.commands = []footerCommand{
		{key: "enter", value: "send"},
		{key: "pgup/pgdn", value: "switch room"},
		{key: "ctrl+r", value: "rooms"},
		{key: "ctrl+n", value: "new room"},
	}
	m = m.resizeChat()
	return m, textinput.Blink
}

func (m model) resizeChat() model {
	if m.viewportWidth == 0 {
		return m
	}
	width := max(m.viewportWidth-sidebarWidth-2, 10)
	m.state.chat.transcript.Width = width
	m.state.chat.transcript.Height = max(m.contentHeight()-2, 1)
	m.state.chat.input.Width = width - 4
	return m.refreshTranscript()
}

func (m model) ChatUpdate(msg tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			text := strings.TrimSpace(m.state.chat.input.Value())
			m.state.chat.input.Reset()
			return m.submit(text)
		case key.Matches(msg, keys.NextRoom):
			return m.cycleRoom(1)
		case key.Matches(msg, keys.PrevRoom):
			return m.cycleRoom(-1)
		case key.Matches(msg, keys.Up):
			m.state.chat.transcript.LineUp(1)
			return m, nil
		case key.Matches(msg, keys.Down):
			m.state.chat.transcript.LineDown(1)
			return m, nil
		}
	case tea.MouseMsg:
		m.state.chat.transcript, cmd = m.state.chat.transcript.Update(msg)
		return m, cmd
	}

	m.state.chat.input, cmd = m.state.chat.input.Update(msg)
	return m, cmd
}

func (m model) ChatView() string {
	s := m.state.chat
	height := m.contentHeight()

	title := m.theme.TextBrand().Bold(true).Render(conversationTitle(s.focus))
	if s.focus.Kind() == apisdk.KindRoom && s.memberCount > 0 {
		title += m.theme.TextMuted().Render(fmt.Sprintf("  %d members", s.memberCount))
	}

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		s.transcript.View(),
		s.input.View(),
	)

	sidebar := m.theme.Base().
		Width(sidebarWidth).
		Height(height).
		BorderRight(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(m.theme.Border()).
		Render(m.sidebarView())

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		sidebar,
		m.theme.Base().PaddingLeft(1).Height(height).Render(main),
	)
}

func (m model) sidebarView() string {
	s := m.state.chat
	heading := m.theme.TextAccent().Bold(true).Render

	lines := []string{heading("Rooms")}
	if len(s.joined) == 0 {
		lines = append(lines, m.theme.TextMuted().Render("  none yet"))
	}
	for _, id := range s.joined {
		if s.focus == apisdk.RoomTarget(id) {
			lines = append(lines, m.theme.TextHighlight().Bold(true).Render("› #"+id))
			continue
		}
		lines = append(lines, m.theme.TextBody().Render("  #"+id))
	}

	if len(s.roster) > 0 {
		lines = append(lines, "", heading("Members"))
		for _, member := range s.roster {
			dot := m.theme.TextMuted().Render("○ ")
			if member.IsOnline {
				dot = m.theme.TextBrand().Render("● ")
			}
			lines = append(lines, dot+m.theme.TextBody().Render(member.Username))
		}
	}

	lines = append(lines, "", heading(fmt.Sprintf("Online (%d)", len(s.online))))
	for _, user := range s.online {
		name := user.Username
		if user.UserID == m.userID {
			name += " (you)"
		}
		lines = append(lines, m.theme.TextBody().Render("  "+name))
	}

	return strings.Join(lines, "\n")
}

// focus switches the conversation and fetches it. The connection polls the
// new focus from then on.
func (m model) focus(target apisdk.Target) (model, tea.Cmd) {
	if target != m.state.chat.focus {
		m.state.chat.messages = nil
		m.state.chat.roster = nil
		m.state.chat.memberCount = 0
	}
	m.state.chat.focus = target
	m = m.refreshTranscript()

	return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
		_, err := conn.GetMessages(ctx, target)
		return err
	})
}

func (m model) cycleRoom(step int) (model, tea.Cmd) {
	joined := m.state.chat.joined
	if len(joined) == 0 {
		return m, nil
	}

	i := slices.Index(joined, m.state.chat.focus.RoomID)
	next := (i + step + len(joined)) % len(joined)
	if i < 0 {
		next = 0
	}
	return m.focus(apisdk.RoomTarget(joined[next]))
}

func (m model) addJoined(roomID string) model {
	if !slices.Contains(m.state.chat.joined, roomID) {
		m.state.chat.joined = append(m.state.chat.joined, roomID)
	}
	return m
}

func (m model) showConversation(target apisdk.Target, messages []apisdk.Message, memberCount int) model {
	m.state.chat.focus = target
	m.state.chat.messages = slices.Clone(messages)
	m.state.chat.memberCount = memberCount
	return m.refreshTranscript()
}

// applyMessages shows a fetched conversation if it is still the one in focus.
func (m model) applyMessages(messages *apisdk.Messages) model {
	switch {
	case messages.Room != nil:
		target := apisdk.RoomTarget(messages.Room.RoomID)
		if target == m.state.chat.focus {
			m = m.showConversation(target, messages.Room.Messages, messages.Room.MemberCount)
		}
	case messages.Direct != nil:
		target := apisdk.DirectTarget(messages.Direct.RecipientID)
		if target == m.state.chat.focus {
			m = m.showConversation(target, messages.Direct.Messages, 0)
		}
	}
	return m
}

func (m model) upsertMessage(msg apisdk.Message) model {
	if !m.inFocus(msg) {
		return m
	}

	i := slices.IndexFunc(m.state.chat.messages, func(existing apisdk.Message) bool {
		return existing.ID == msg.ID
	})
	if i >= 0 {
		m.state.chat.messages[i] = msg
	} else {
		m.state.chat.messages = append(m.state.chat.messages, msg)
	}
	return m.refreshTranscript()
}

func (m model) inFocus(msg apisdk.Message) bool {
	focus := m.state.chat.focus
	switch msg.Type {
	case apisdk.KindRoom:
		return focus.RoomID != "" && focus.RoomID == msg.RoomID
	case apisdk.KindDirect:
		return focus.RecipientID != "" && (focus.RecipientID == msg.RecipientID || focus.RecipientID == msg.UserID)
	}
	return false
}

// lastOwnMessage finds the newest message in focus written by this user.
func (m model) lastOwnMessage() (apisdk.Message, bool) {
	messages := m.state.chat.messages
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.UserID == m.userID || (msg.UserID == "" && msg.User == m.username) {
			return msg, true
		}
	}
	return apisdk.Message{}, false
}

func (m model) refreshTranscript() model {
	lines := make([]string, 0, len(m.state.chat.messages))
	for _, msg := range m.state.chat.messages {
		lines = append(lines, m.renderMessage(msg))
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.TextMuted().Render("No messages yet."))
	}

	m.state.chat.transcript.SetContent(strings.Join(lines, "\n"))
	m.state.chat.transcript.GotoBottom()
	return m
}

func (m model) renderMessage(msg apisdk.Message) string {
	stamp := m.theme.TextMuted().Render(time.UnixMilli(msg.Timestamp).Format("15:04"))

	author := m.theme.TextBrand().Bold(true)
	if msg.UserID == m.userID {
		author = m.theme.TextHighlight().Bold(true)
	}

	line := stamp + " " + author.Render(msg.User) + " " + m.theme.TextAccent().Render(msg.Content)
	if msg.Edited {
		line += m.theme.TextMuted().Render(" (edited)")
	}
	return line
}

func conversationTitle(target apisdk.Target) string {
	if target.IsZero() {
		return "no conversation"
	}
	switch target.Kind() {
	case apisdk.KindRoom:
		return "#" + target.RoomID
	case apisdk.KindDirect:
		return "@" + target.RecipientID
	}
	return "no conversation"
}
