package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	apisdk "github.com/hilthontt/devtea/api-sdk"
)

const helpText = "/join <room>  /leave  /room <room>  /dm <user>  /members  /rooms  /search <text>  /create <name>  /edit <text>  /delete"

type inputCommand struct {
	name string
	arg  string
}

// parseInput splits "/name arg" lines. Plain text has an empty name.
func parseInput(text string) inputCommand {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return inputCommand{arg: text}
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	return inputCommand{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}
}

func (m model) submit(text string) (model, tea.Cmd) {
	if text == "" {
		return m, nil
	}

	in := parseInput(text)
	if in == (inputCommand{}) {
		return m, nil
	}
	focus := m.state.chat.focus

	switch in.name {
	case "":
		if focus.IsZero() {
			return m.fail("Pick a room or a user first")
		}
		return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
			_, err := conn.SendMessage(ctx, in.arg, focus)
			return err
		})

	case "help":
		return m.fail(helpText)

	case "join":
		if in.arg == "" {
			return m.fail("Usage: /join <room>")
		}
		return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
			_, err := conn.JoinRoom(ctx, in.arg)
			return err
		})

	case "leave":
		roomID := in.arg
		if roomID == "" {
			roomID = focus.RoomID
		}
		if roomID == "" {
			return m.fail("Usage: /leave <room>")
		}
		return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
			_, err := conn.LeaveRoom(ctx, roomID)
			return err
		})

	case "room":
		if in.arg == "" {
			return m.fail("Usage: /room <room>")
		}
		return m.focus(apisdk.RoomTarget(in.arg))

	case "dm":
		if in.arg == "" {
			return m.fail("Usage: /dm <user id>")
		}
		return m.focus(apisdk.DirectTarget(in.arg))

	case "members":
		if focus.Kind() != apisdk.KindRoom || focus.IsZero() {
			return m.fail("Members are only listed for rooms")
		}
		return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
			_, err := conn.GetRoomMembers(ctx, focus.RoomID)
			return err
		})

	case "rooms":
		return m.RoomsSwitch()

	case "search":
		var cmd tea.Cmd
		m, cmd = m.RoomsSwitch()
		m.state.rooms.input.SetValue(in.arg)
		m.state.rooms.query = in.arg
		return m, tea.Batch(cmd, m.searchRooms(in.arg))

	case "create":
		if in.arg == "" {
			return m.NewRoomSwitch()
		}
		return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
			_, err := conn.CreateRoom(ctx, in.arg, "")
			return err
		})

	case "edit", "delete":
		own, ok := m.lastOwnMessage()
		if !ok {
			return m.fail("You have no message here to " + in.name)
		}
		if in.name == "edit" {
			if in.arg == "" {
				return m.fail("Usage: /edit <new text>")
			}
			return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
				_, err := conn.EditMessage(ctx, own.ID, in.arg, focus)
				return err
			})
		}
		return m, m.run(func(ctx context.Context, conn *apisdk.Connection) error {
			_, err := conn.DeleteMessage(ctx, own.ID, focus)
			return err
		})
	}

	return m.fail("Unknown command /" + in.name)
}

func (m model) fail(message string) (model, tea.Cmd) {
	m.error = &visibleError{message: message}
	return m, nil
}
