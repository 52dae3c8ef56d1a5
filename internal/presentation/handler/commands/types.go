package commands

import (
	"encoding/json"

	"github.com/hilthontt/devtea/internal/application/usecases/room"
	"github.com/hilthontt/devtea/internal/domain"
)

// Command types accepted on the command endpoint.
const (
	Register       = "register"
	JoinRoom       = "join_room"
	LeaveRoom      = "leave_room"
	SendMessage    = "send_message"
	GetMessages    = "get_messages"
	EditMessage    = "edit_message"
	DeleteMessage  = "delete_message"
	SearchRooms    = "search_rooms"
	CreateRoom     = "create_room"
	GetRooms       = "get_rooms"
	GetJoinedRooms = "get_joined_rooms"
	GetOnlineUsers = "get_online_users"
	GetRoomMembers = "get_room_members"
)

// Result types carried in successful responses.
const (
	Registered     = "registered"
	RoomJoined     = "room_joined"
	RoomLeft       = "room_left"
	MessageSent    = "message_sent"
	RoomMessages   = "room_messages"
	DMMessages     = "dm_messages"
	MessageEdited  = "message_edited"
	MessageDeleted = "message_deleted"
	SearchResults  = "search_results"
	RoomCreated    = "room_created"
	RoomsList      = "rooms_list"
	JoinedRooms    = "joined_rooms"
	OnlineUsers    = "online_users"
	RoomMembers    = "room_members"
)

// commandRequest is the body of every command call
type commandRequest struct {
	Type   string          `json:"type" example:"join_room"`               // Command type
	Data   json.RawMessage `json:"data" swaggertype:"object"`              // Command payload
	UserID string          `json:"userId" example:"user_1700000000000_ab"` // Caller id
}

// commandResponse is the envelope of every command reply
type commandResponse struct {
	Success bool   `json:"success" example:"true"`
	Type    string `json:"type,omitempty" example:"room_joined"`
	Data    any    `json:"data,omitempty" swaggertype:"object"`
	Error   string `json:"error,omitempty" example:"Room not found"`
}

type registerData struct {
	UserID   string `json:"userId" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type roomData struct {
	RoomID string `json:"roomId" validate:"required"`
}

type sendMessageData struct {
	Username    string             `json:"username"`
	Content     string             `json:"content" validate:"required"`
	Type        domain.MessageKind `json:"type" validate:"required,oneof=room dm"`
	RoomID      string             `json:"roomId" validate:"required_if=Type room"`
	RecipientID string             `json:"recipientId" validate:"required_if=Type dm"`
}

type getMessagesData struct {
	Type        domain.MessageKind `json:"type" validate:"required,oneof=room dm"`
	RoomID      string             `json:"roomId" validate:"required_if=Type room"`
	RecipientID string             `json:"recipientId" validate:"required_if=Type dm"`
}

type editMessageData struct {
	MessageID   string `json:"messageId" validate:"required"`
	Content     string `json:"content" validate:"required"`
	RoomID      string `json:"roomId" validate:"required_without=RecipientID"`
	RecipientID string `json:"recipientId"`
}

type deleteMessageData struct {
	MessageID   string `json:"messageId" validate:"required"`
	RoomID      string `json:"roomId" validate:"required_without=RecipientID"`
	RecipientID string `json:"recipientId"`
}

type searchRoomsData struct {
	Query string `json:"query"`
}

type createRoomData struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type roomMessagesResult struct {
	RoomID      string           `json:"roomId"`
	Messages    []domain.Message `json:"messages"`
	MemberCount int              `json:"memberCount"`
}

type dmMessagesResult struct {
	RecipientID string           `json:"recipientId"`
	Messages    []domain.Message `json:"messages"`
}

type searchResultsResult struct {
	Rooms []room.SearchResult `json:"rooms"`
	Query string              `json:"query"`
}

type roomListResult struct {
	Rooms []room.Listing `json:"rooms"`
}

type onlineUsersResult struct {
	Users []domain.OnlineUser `json:"users"`
}

type roomMembersResult struct {
	RoomID  string              `json:"roomId"`
	Members []domain.RoomMember `json:"members"`
}
