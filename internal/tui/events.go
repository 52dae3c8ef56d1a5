package tui

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	apisdk "github.com/hilthontt/devtea/api-sdk"
)

const eventBuffer = 64

type connectionEventMsg struct {
	event apisdk.Event
}

// eventBridge hands connection events, raised on SDK goroutines, to the
// bubbletea loop.
type eventBridge struct {
	events chan apisdk.Event
}

func newEventBridge(size int) *eventBridge {
	return &eventBridge{events: make(chan apisdk.Event, size)}
}

// handle drops the event when the UI is too far behind. Poll updates are
// repeated on the next tick anyway.
func (b *eventBridge) handle(event apisdk.Event) {
	select {
	case b.events <- event:
	default:
	}
}

func (b *eventBridge) listen() tea.Cmd {
	return func() tea.Msg {
		return connectionEventMsg{event: <-b.events}
	}
}

func (m model) applyEvent(event apisdk.Event) (model, tea.Cmd) {
	switch event.Type {
	case apisdk.EventConnected:
		reg, _ := event.Data.(*apisdk.Registration)
		return m.onConnected(reg)

	case apisdk.EventConnectionFailed:
		m.state.login.connecting = false
		m.error = &visibleError{message: "Connection failed: " + errorText(event.Err)}
		return m, nil

	case apisdk.EventConnectionLost:
		m.error = &visibleError{message: "Connection lost, reconnecting..."}
		return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
			return conn.Reconnect(ctx)
		})

	case apisdk.ResultRoomJoined:
		if joined, ok := event.Data.(*apisdk.RoomJoined); ok {
			m = m.addJoined(joined.RoomID)
			m = m.showConversation(apisdk.RoomTarget(joined.RoomID), joined.Messages, joined.MemberCount)
			if m.page == roomsPage {
				return m.ChatSwitch()
			}
		}

	case apisdk.ResultRoomLeft:
		if left, ok := event.Data.(*apisdk.RoomLeft); ok {
			m.state.chat.joined = slices.DeleteFunc(m.state.chat.joined, func(id string) bool { return id == left.RoomID })
			if m.state.chat.focus != apisdk.RoomTarget(left.RoomID) {
				break
			}
			if len(m.state.chat.joined) > 0 {
				return m.focus(defaultFocus(m.state.chat.joined))
			}
			m.state.chat.focus = apisdk.Target{}
			m.state.chat.messages = nil
			m.state.chat.roster = nil
			m = m.refreshTranscript()
		}

	case apisdk.ResultRoomMessages, apisdk.ResultDMMessages:
		if messages, ok := event.Data.(*apisdk.Messages); ok {
			m = m.applyMessages(messages)
		}

	case apisdk.EventRoomMessagesUpdate:
		if room, ok := event.Data.(*apisdk.RoomMessages); ok {
			m = m.applyMessages(&apisdk.Messages{Room: room})
		}

	case apisdk.EventDMMessagesUpdate:
		if direct, ok := event.Data.(*apisdk.DirectMessages); ok {
			m = m.applyMessages(&apisdk.Messages{Direct: direct})
		}

	case apisdk.ResultMessageSent, apisdk.ResultMessageEdited:
		if msg, ok := event.Data.(*apisdk.Message); ok {
			m = m.upsertMessage(*msg)
		}

	case apisdk.ResultMessageDeleted:
		if deleted, ok := event.Data.(*apisdk.MessageDeleted); ok {
			m.state.chat.messages = slices.DeleteFunc(m.state.chat.messages, func(msg apisdk.Message) bool {
				return msg.ID == deleted.MessageID
			})
			m = m.refreshTranscript()
		}

	case apisdk.ResultRoomCreated:
		if room, ok := event.Data.(*apisdk.CreatedRoom); ok {
			var focus, blink tea.Cmd
			m = m.addJoined(room.ID)
			m, focus = m.focus(apisdk.RoomTarget(room.ID))
			m, blink = m.ChatSwitch()
			return m, tea.Batch(focus, blink)
		}

	case apisdk.ResultRoomsList:
		if list, ok := event.Data.(*apisdk.RoomList); ok {
			m = m.setRoomListing(list.Rooms)
		}

	case apisdk.ResultSearchResults:
		if results, ok := event.Data.(*apisdk.SearchResults); ok {
			listing := make([]apisdk.RoomListing, 0, len(results.Rooms))
			for _, hit := range results.Rooms {
				listing = append(listing, apisdk.RoomListing{
					ID:          hit.ID,
					Name:        hit.Name,
					Description: hit.Description,
					MemberCount: hit.MemberCount,
					IsMember:    hit.IsMember,
				})
			}
			m = m.setRoomListing(listing)
		}

	case apisdk.ResultOnlineUsers:
		if online, ok := event.Data.(*apisdk.OnlineUsers); ok {
			m.state.chat.online = online.Users
		}

	case apisdk.ResultRoomMembers:
		if members, ok := event.Data.(*apisdk.RoomMembers); ok && m.state.chat.focus == apisdk.RoomTarget(members.RoomID) {
			m.state.chat.roster = members.Members
		}
	}

	return m, nil
}

func (m model) onConnected(reg *apisdk.Registration) (model, tea.Cmd) {
	m.error = nil
	m.state.login.connecting = false
	if reg != nil {
		m.state.chat.joined = slices.Clone(reg.JoinedRooms)
	}

	focus := defaultFocus(m.state.chat.joined)
	if m.conn != nil && !m.conn.Focus().IsZero() {
		focus = m.conn.Focus()
	}

	var blink tea.Cmd
	if m.page == loginPage {
		m, blink = m.ChatSwitch()
	}

	m, cmd := m.focus(focus)
	return m, tea.Batch(blink, cmd, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
		_, err := conn.GetOnlineUsers(ctx)
		return err
	}))
}

// defaultFocus picks the most recently joined room, or the lobby.
func defaultFocus(joined []string) apisdk.Target {
	if n := len(joined); n > 0 {
		return apisdk.RoomTarget(joined[n-1])
	}
	return apisdk.RoomTarget(apisdk.DefaultRoom)
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
