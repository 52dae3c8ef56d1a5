package apisdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/hilthontt/devtea/api-sdk/internal/requestconfig"
	"github.com/hilthontt/devtea/api-sdk/option"
	"github.com/tidwall/gjson"
)

const commandPath = "websocket"

const (
	CommandRegister       = "register"
	CommandJoinRoom       = "join_room"
	CommandLeaveRoom      = "leave_room"
	CommandSendMessage    = "send_message"
	CommandGetMessages    = "get_messages"
	CommandEditMessage    = "edit_message"
	CommandDeleteMessage  = "delete_message"
	CommandSearchRooms    = "search_rooms"
	CommandCreateRoom     = "create_room"
	CommandGetRooms       = "get_rooms"
	CommandGetJoinedRooms = "get_joined_rooms"
	CommandGetOnlineUsers = "get_online_users"
	CommandGetRoomMembers = "get_room_members"
)

const (
	ResultRegistered     = "registered"
	ResultRoomJoined     = "room_joined"
	ResultRoomLeft       = "room_left"
	ResultMessageSent    = "message_sent"
	ResultRoomMessages   = "room_messages"
	ResultDMMessages     = "dm_messages"
	ResultMessageEdited  = "message_edited"
	ResultMessageDeleted = "message_deleted"
	ResultSearchResults  = "search_results"
	ResultRoomCreated    = "room_created"
	ResultRoomsList      = "rooms_list"
	ResultJoinedRooms    = "joined_rooms"
	ResultOnlineUsers    = "online_users"
	ResultRoomMembers    = "room_members"
)

// Target addresses a conversation: a room or a direct message partner.
type Target struct {
	RoomID      string
	RecipientID string
}

func RoomTarget(roomID string) Target {
	return Target{RoomID: roomID}
}

func DirectTarget(recipientID string) Target {
	return Target{RecipientID: recipientID}
}

func (t Target) Kind() MessageKind {
	if t.RoomID != "" {
		return KindRoom
	}
	return KindDirect
}

func (t Target) IsZero() bool {
	return t == Target{}
}

func (t Target) validate() error {
	if (t.RoomID == "") == (t.RecipientID == "") {
		return ErrMissingTarget
	}
	return nil
}

type commandRequest struct {
	Type   string `json:"type"`
	Data   any    `json:"data"`
	UserID string `json:"userId,omitempty"`
}

type targetData struct {
	Type        MessageKind `json:"type,omitempty"`
	RoomID      string      `json:"roomId,omitempty"`
	RecipientID string      `json:"recipientId,omitempty"`
}

// Result is a successful command envelope.
type Result struct {
	Type string
	Data json.RawMessage
}

type ChatService struct {
	Options []option.RequestOption
}

func NewChatService(opts ...option.RequestOption) *ChatService {
	return &ChatService{opts}
}

// Send issues any command and returns the raw result. Transport failures are
// retried per the request options; a rejected command comes back as a
// *CommandError after a single attempt.
func (c *ChatService) Send(ctx context.Context, userID, commandType string, data any, opts ...option.RequestOption) (*Result, error) {
	opts = slices.Concat(c.Options, opts)
	if data == nil {
		data = struct{}{}
	}

	var raw []byte
	body := commandRequest{Type: commandType, Data: data, UserID: userID}
	if err := requestconfig.ExecuteNewRequest(ctx, http.MethodPost, commandPath, body, &raw, opts...); err != nil {
		return nil, err
	}

	return &Result{
		Type: gjson.GetBytes(raw, "type").String(),
		Data: json.RawMessage(gjson.GetBytes(raw, "data").Raw),
	}, nil
}

func decodeResult[T any](res *Result, want string) (*T, error) {
	if res.Type != want {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrUnexpectedResult, res.Type, want)
	}

	out := new(T)
	if len(res.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(res.Data, out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", want, err)
	}
	return out, nil
}

func sendAndDecode[T any](ctx context.Context, c *ChatService, userID, commandType, want string, data any, opts []option.RequestOption) (*T, error) {
	res, err := c.Send(ctx, userID, commandType, data, opts...)
	if err != nil {
		return nil, err
	}
	return decodeResult[T](res, want)
}

func (c *ChatService) Register(ctx context.Context, userID, username string, opts ...option.RequestOption) (*Registration, error) {
	if userID == "" {
		return nil, ErrMissingIDParameter
	}
	if username == "" {
		return nil, ErrMissingUsername
	}

	data := map[string]string{"userId": userID, "username": username}
	return sendAndDecode[Registration](ctx, c, userID, CommandRegister, ResultRegistered, data, opts)
}

func (c *ChatService) JoinRoom(ctx context.Context, userID, roomID string, opts ...option.RequestOption) (*RoomJoined, error) {
	if roomID == "" {
		return nil, ErrMissingIDParameter
	}
	data := map[string]string{"roomId": roomID}
	return sendAndDecode[RoomJoined](ctx, c, userID, CommandJoinRoom, ResultRoomJoined, data, opts)
}

func (c *ChatService) LeaveRoom(ctx context.Context, userID, roomID string, opts ...option.RequestOption) (*RoomLeft, error) {
	if roomID == "" {
		return nil, ErrMissingIDParameter
	}
	data := map[string]string{"roomId": roomID}
	return sendAndDecode[RoomLeft](ctx, c, userID, CommandLeaveRoom, ResultRoomLeft, data, opts)
}

type SendMessageParams struct {
	Username string
	Content  string
	Target   Target
}

type sendMessageData struct {
	Username string `json:"username"`
	Content  string `json:"content"`
	targetData
}

// SendMessage posts to a room or a direct conversation. Posting to a room the
// caller has not joined joins it.
func (c *ChatService) SendMessage(ctx context.Context, userID string, params SendMessageParams, opts ...option.RequestOption) (*Message, error) {
	if err := params.Target.validate(); err != nil {
		return nil, err
	}

	data := sendMessageData{
		Username: params.Username,
		Content:  params.Content,
		targetData: targetData{
			Type:        params.Target.Kind(),
			RoomID:      params.Target.RoomID,
			RecipientID: params.Target.RecipientID,
		},
	}
	return sendAndDecode[Message](ctx, c, userID, CommandSendMessage, ResultMessageSent, data, opts)
}

func (c *ChatService) GetMessages(ctx context.Context, userID string, target Target, opts ...option.RequestOption) (*Messages, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	data := targetData{
		Type:        target.Kind(),
		RoomID:      target.RoomID,
		RecipientID: target.RecipientID,
	}
	res, err := c.Send(ctx, userID, CommandGetMessages, data, opts...)
	if err != nil {
		return nil, err
	}
	return decodeMessages(res)
}

func decodeMessages(res *Result) (*Messages, error) {
	if res.Type == ResultDMMessages {
		direct, err := decodeResult[DirectMessages](res, ResultDMMessages)
		if err != nil {
			return nil, err
		}
		return &Messages{Direct: direct}, nil
	}

	room, err := decodeResult[RoomMessages](res, ResultRoomMessages)
	if err != nil {
		return nil, err
	}
	return &Messages{Room: room}, nil
}

type EditMessageParams struct {
	MessageID string
	Content   string
	Target    Target
}

func (c *ChatService) EditMessage(ctx context.Context, userID string, params EditMessageParams, opts ...option.RequestOption) (*Message, error) {
	if params.MessageID == "" {
		return nil, ErrMissingIDParameter
	}
	if err := params.Target.validate(); err != nil {
		return nil, err
	}

	data := map[string]string{
		"messageId":   params.MessageID,
		"content":     params.Content,
		"roomId":      params.Target.RoomID,
		"recipientId": params.Target.RecipientID,
	}
	return sendAndDecode[Message](ctx, c, userID, CommandEditMessage, ResultMessageEdited, data, opts)
}

func (c *ChatService) DeleteMessage(ctx context.Context, userID, messageID string, target Target, opts ...option.RequestOption) (*MessageDeleted, error) {
	if messageID == "" {
		return nil, ErrMissingIDParameter
	}
	if err := target.validate(); err != nil {
		return nil, err
	}

	data := map[string]string{
		"messageId":   messageID,
		"roomId":      target.RoomID,
		"recipientId": target.RecipientID,
	}
	return sendAndDecode[MessageDeleted](ctx, c, userID, CommandDeleteMessage, ResultMessageDeleted, data, opts)
}

func (c *ChatService) SearchRooms(ctx context.Context, userID, query string, opts ...option.RequestOption) (*SearchResults, error) {
	data := map[string]string{"query": query}
	return sendAndDecode[SearchResults](ctx, c, userID, CommandSearchRooms, ResultSearchResults, data, opts)
}

func (c *ChatService) CreateRoom(ctx context.Context, userID, name, description string, opts ...option.RequestOption) (*CreatedRoom, error) {
	data := map[string]string{"name": name, "description": description}
	return sendAndDecode[CreatedRoom](ctx, c, userID, CommandCreateRoom, ResultRoomCreated, data, opts)
}

// GetRooms lists every public room. userID may be empty for an anonymous
// listing.
func (c *ChatService) GetRooms(ctx context.Context, userID string, opts ...option.RequestOption) (*RoomList, error) {
	return sendAndDecode[RoomList](ctx, c, userID, CommandGetRooms, ResultRoomsList, nil, opts)
}

func (c *ChatService) GetJoinedRooms(ctx context.Context, userID string, opts ...option.RequestOption) (*JoinedRooms, error) {
	return sendAndDecode[JoinedRooms](ctx, c, userID, CommandGetJoinedRooms, ResultJoinedRooms, nil, opts)
}

func (c *ChatService) GetOnlineUsers(ctx context.Context, userID string, opts ...option.RequestOption) (*OnlineUsers, error) {
	return sendAndDecode[OnlineUsers](ctx, c, userID, CommandGetOnlineUsers, ResultOnlineUsers, nil, opts)
}

func (c *ChatService) GetRoomMembers(ctx context.Context, userID, roomID string, opts ...option.RequestOption) (*RoomMembers, error) {
	if roomID == "" {
		return nil, ErrMissingIDParameter
	}
	data := map[string]string{"roomId": roomID}
	return sendAndDecode[RoomMembers](ctx, c, userID, CommandGetRoomMembers, ResultRoomMembers, data, opts)
}
