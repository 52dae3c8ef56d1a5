package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hilthontt/devtea/internal/application/usecases/membership"
	"github.com/hilthontt/devtea/internal/application/usecases/message"
	"github.com/hilthontt/devtea/internal/application/usecases/room"
	"github.com/hilthontt/devtea/internal/domain"
	httpjson "github.com/hilthontt/devtea/internal/infrastructure/json"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/metrics"
	"github.com/hilthontt/devtea/internal/infrastructure/ratelimiter"
)

// Wire texts of application errors.
const (
	errUserNotFound        = "User not found"
	errRoomNotFound        = "Room not found"
	errRoomOrUserNotFound  = "Room or user not found"
	errRoomAlreadyExists   = "Room already exists"
	errMessageUnavailable  = "Message not found or unauthorized"
	errUnknownMessageType  = "Unknown message type"
	errInternalServerError = "Internal server error"
	errInvalidBody         = "Invalid request body"
	errTooManyCommands     = "Too many requests"
)

// unknownCommandLabel keeps arbitrary client input out of metric labels.
const unknownCommandLabel = "unknown"

type commandFunc func(ctx context.Context, userID string, data json.RawMessage) (string, any, error)

type Handler struct {
	membership membership.MembershipUseCase
	messages   message.MessageUseCase
	rooms      room.RoomUseCase
	validator  *payloadValidator
	limiter    *ratelimiter.FixedWindow
	metrics    *metrics.Metrics
	logger     logging.Logger
	commands   map[string]commandFunc
}

// NewHandler builds the command dispatcher. limiter may be nil to disable the
// per-user command limit.
func NewHandler(
	membershipUseCase membership.MembershipUseCase,
	messageUseCase message.MessageUseCase,
	roomUseCase room.RoomUseCase,
	limiter *ratelimiter.FixedWindow,
	commandMetrics *metrics.Metrics,
	logger logging.Logger,
) (*Handler, error) {
	validator, err := newPayloadValidator()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		membership: membershipUseCase,
		messages:   messageUseCase,
		rooms:      roomUseCase,
		validator:  validator,
		limiter:    limiter,
		metrics:    commandMetrics,
		logger:     logger,
	}

	h.commands = map[string]commandFunc{
		Register:       h.register,
		JoinRoom:       h.joinRoom,
		LeaveRoom:      h.leaveRoom,
		SendMessage:    h.sendMessage,
		GetMessages:    h.getMessages,
		EditMessage:    h.editMessage,
		DeleteMessage:  h.deleteMessage,
		SearchRooms:    h.searchRooms,
		CreateRoom:     h.createRoom,
		GetRooms:       h.getRooms,
		GetJoinedRooms: h.getJoinedRooms,
		GetOnlineUsers: h.getOnlineUsers,
		GetRoomMembers: h.getRoomMembers,
	}

	return h, nil
}

// HandleCommand godoc
// @Summary      Execute a chat command
// @Description  Single request/response endpoint for every chat operation. Application errors are reported with success=false and HTTP 200.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        request body commandRequest true "Command envelope"
// @Success      200 {object} commandResponse "Command result or application error"
// @Failure      400 {object} commandResponse "Undecodable body"
// @Failure      429 {object} commandResponse "Too many commands"
// @Failure      500 {object} commandResponse "Unknown command type or internal error"
// @Router       /websocket [post]
// @Router       /commands [post]
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req commandRequest
	if err := httpjson.Read(w, r, &req); err != nil {
		h.writeFailure(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	command, ok := h.commands[req.Type]
	if !ok {
		h.metrics.ObserveCommand(unknownCommandLabel, metrics.OutcomeUnknown, time.Since(start))
		h.logger.Warn(logging.RequestResponse, logging.Command, "unknown command type", map[logging.ExtraKey]any{
			logging.CommandType: req.Type,
			logging.UserID:      req.UserID,
		})
		h.writeFailure(w, http.StatusInternalServerError, errUnknownMessageType)
		return
	}

	if h.limiter != nil {
		if allow, retryAfter := h.limiter.Allow(limiterKey(r, req.UserID)); !allow {
			h.metrics.ObserveRateLimited("command")
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			h.writeFailure(w, http.StatusTooManyRequests, errTooManyCommands)
			return
		}
	}

	ctx := r.Context()

	if req.Type != Register && req.UserID != "" {
		if err := h.membership.Touch(ctx, req.UserID); err != nil {
			h.logger.Warn(logging.Store, logging.Membership, "failed to refresh lastSeen", map[logging.ExtraKey]any{
				logging.UserID:       req.UserID,
				logging.ErrorMessage: err.Error(),
			})
		}
	}

	resultType, result, err := command(ctx, req.UserID, req.Data)
	if err != nil {
		status, text := h.mapError(r, req, err)
		h.metrics.ObserveCommand(req.Type, metrics.OutcomeError, time.Since(start))
		h.writeFailure(w, status, text)
		return
	}

	h.metrics.ObserveCommand(req.Type, metrics.OutcomeOK, time.Since(start))
	h.logger.Debug(logging.RequestResponse, logging.Command, "command handled", map[logging.ExtraKey]any{
		logging.CommandType: req.Type,
		logging.UserID:      req.UserID,
		logging.Latency:     time.Since(start).String(),
	})

	_ = httpjson.Write(w, http.StatusOK, commandResponse{
		Success: true,
		Type:    resultType,
		Data:    result,
	})
}

func (h *Handler) writeFailure(w http.ResponseWriter, status int, text string) {
	_ = httpjson.Write(w, status, commandResponse{Success: false, Error: text})
}

// mapError turns a use case error into the wire status and text.
func (h *Handler) mapError(r *http.Request, req commandRequest, err error) (int, string) {
	var invalid *validationError
	switch {
	case errors.As(err, &invalid):
		return http.StatusOK, invalid.Error()
	case errors.Is(err, errBadPayload):
		return http.StatusBadRequest, errInvalidBody
	case errors.Is(err, domain.ErrRoomOrUserNotFound):
		return http.StatusOK, errRoomOrUserNotFound
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusOK, errUserNotFound
	case errors.Is(err, domain.ErrRoomNotFound):
		return http.StatusOK, errRoomNotFound
	case errors.Is(err, domain.ErrRoomAlreadyExists):
		return http.StatusOK, errRoomAlreadyExists
	case errors.Is(err, domain.ErrMessageNotFound), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusOK, errMessageUnavailable
	case errors.Is(err, domain.ErrInvalidContent),
		errors.Is(err, domain.ErrInvalidRoomName),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusOK, err.Error()
	}

	h.logger.Error(logging.RequestResponse, logging.Command, "command failed", map[logging.ExtraKey]any{
		logging.CommandType:  req.Type,
		logging.UserID:       req.UserID,
		logging.ErrorMessage: err.Error(),
	})

	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}

	return http.StatusInternalServerError, errInternalServerError
}

var errBadPayload = errors.New("bad command payload")

// decode unmarshals data into payload and validates it.
func (h *Handler) decode(data json.RawMessage, payload any) error {
	if err := unmarshal(data, payload); err != nil {
		return err
	}
	return h.validator.Struct(payload)
}

// unmarshal leaves payload zeroed when data is absent or null.
func unmarshal(data json.RawMessage, payload any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, payload); err != nil {
		return errBadPayload
	}
	return nil
}

func limiterKey(r *http.Request, userID string) string {
	if userID != "" {
		return "user:" + userID
	}
	return "addr:" + r.RemoteAddr
}

func (h *Handler) register(ctx context.Context, userID string, data json.RawMessage) (string, any, error) {
	var payload registerData
	if err := unmarshal(data, &payload); err != nil {
		return "", nil, err
	}
	// older clients only send the id on the envelope
	if payload.UserID == "" {
		payload.UserID = userID
	}
	if err := h.validator.Struct(&payload); err != nil {
		return "", nil, err
	}

	registration, err := h.membership.Register(ctx, payload.UserID, payload.Username)
	if err != nil {
		return "", nil, err
	}
	return Registered, registration, nil
}

func (h *Handler) joinRoom(ctx context.Context, userID string, data json.RawMessage) (string, any, error) {
	var payload roomData
	if err := h.decode(data, &payload); err != nil {
		return "", nil, err
	}

	joined, err := h.membership.Join(ctx, userID, payload.RoomID)
	if err != nil {
		return "", nil, err
	}
	return RoomJoined, joined, nil
}

func (h *Handler) leaveRoom(ctx context.Context, userID string, data json.RawMessage) (string, any, error) {
	var payload roomData
	if err := h.decode(data, &payload); err != nil {
		return "", nil, err
	}

	left, err := h.membership.Leave(ctx, userID, payload.RoomID)
	if err != nil {
		return "", nil, err
	}
	return RoomLeft, left, nil
}

func (h *Handler) sendMessage(ctx context.Context, userID string, data json.RawMessage) (string, any, error) {
	var payload sendMessageData
	if err := h.decode(data, &payload); err != nil {
		return "", nil, err
	}

	msg, err := h.messages.Send(ctx, message.SendInput{
		UserID:      userID,
		Username:    payload.Username,
		Content:     payload.Content,
		Kind:        payload.Type,
		RoomID:      payload.RoomID,
		RecipientID: payload.RecipientID,
	})
	if err != nil {
		return "", nil, err
	}
	return MessageSent, msg, nil
}

func (h *Handler) getMessages(ctx context.Context, userID string, data json.RawMessage) (string, any, error) {
	var payload getMessagesData
	if err := h.decode(data, &payload); err != nil {
		return "", nil, err
	}

	history, err := h.messages.History(ctx, userID, payload.Type, payload.RoomID, payload.RecipientID)
	if err != nil {
		return "", nil, err
	}

	if history.Kind == domain.KindDirect {
		return DMMessages, dmMessagesResult{
			RecipientID: history.RecipientID,
			Messages:    history.Messages,
		}, nil
	}
	return RoomMessages, roomMessagesResult{
		RoomID:      history.RoomID,
		Messages:    history.Messages,
		MemberCount: history.MemberCount,
	}, nil
}

func (h *Handler) editMessage(ctx context.Context, userID string, data json.RawMessage) (string, any, error) {
	var payload editMessageData
	if err := h.decode(data, &payload); err != nil {
		return "", nil, err
	}

	edited, err := h.messages.Edit(ctx, userID, payload.MessageID, payload.Content, payload.RoomID, payload.RecipientID)
	if err != nil {
		return "", nil, err
	}
	return MessageEdited, edited, nil
}

func (h *Handler) deleteMessage(ctx context.Context, userID string, data json.RawMessage) (string, any, error) {
	var payload deleteMessageData
	if err := h.decode(data, &payload); err != nil {
		return "", nil, err
	}

	if err := h.messages.Delete(ctx, userID, payload.MessageID, payload.RoomID, payload.RecipientID); err != nil {
		return "", nil, err
	}
	return MessageDeleted, message.Deleted{MessageID: payload.MessageID}, nil
}

func (h *Handler) searchRooms(ctx context.Context, userID string, data json.RawMessage) (string, any, error) {
	var payload searchRoomsData
	if err := h.decode(data, &payload); err != nil {
		return "", nil, err
	}

	query := strings.ToLower(payload.Query)
	rooms, err := h.rooms.Search(ctx, userID, query)
	if err != nil {
		return "", nil, err
	}
	return SearchResults, searchResultsResult{Rooms: rooms, Query: query}, nil
}

func (h *Handler) createRoom(ctx context.Context, userID string, data json.RawMessage) (string, any, error) {
	var payload createRoomData
	if err := h.decode(data, &payload); err != nil {
		return "", nil, err
	}

	created, err := h.rooms.Create(ctx, userID, payload.Name, payload.Description)
	if err != nil {
		return "", nil, err
	}
	return RoomCreated, created, nil
}

func (h *Handler) getRooms(ctx context.Context, userID string, _ json.RawMessage) (string, any, error) {
	rooms, err := h.rooms.List(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	return RoomsList, roomListResult{Rooms: rooms}, nil
}

func (h *Handler) getJoinedRooms(ctx context.Context, userID string, _ json.RawMessage) (string, any, error) {
	rooms, err := h.rooms.Joined(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	return JoinedRooms, roomListResult{Rooms: rooms}, nil
}

func (h *Handler) getOnlineUsers(ctx context.Context, _ string, _ json.RawMessage) (string, any, error) {
	users, err := h.membership.OnlineUsers(ctx)
	if err != nil {
		return "", nil, err
	}
	return OnlineUsers, onlineUsersResult{Users: users}, nil
}

func (h *Handler) getRoomMembers(ctx context.Context, _ string, data json.RawMessage) (string, any, error) {
	var payload roomData
	if err := h.decode(data, &payload); err != nil {
		return "", nil, err
	}

	members, err := h.membership.Members(ctx, payload.RoomID)
	if err != nil {
		return "", nil, err
	}
	return RoomMembers, roomMembersResult{RoomID: payload.RoomID, Members: members}, nil
}
