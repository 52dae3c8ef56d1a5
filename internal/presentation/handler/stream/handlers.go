package stream

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/json"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
	"github.com/hilthontt/devtea/internal/infrastructure/ws"
)

type Handler struct {
	core     *ws.Core
	store    domain.ConversationStore
	buffer   int
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewHandler serves the push feed. An empty allowedOrigins list, or one
// containing "*", accepts any origin.
func NewHandler(core *ws.Core, store domain.ConversationStore, buffer int, allowedOrigins []string, logger logging.Logger) *Handler {
	return &Handler{
		core:   core,
		store:  store,
		buffer: buffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
					return true
				}
				return slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// SubscribeHandler godoc
// @Summary      Subscribe to a conversation
// @Description  Upgrades to a WebSocket that pushes message.created, message.edited, message.deleted, member.joined and member.left events of one room or direct conversation. The first frame is a subscribed acknowledgement.
// @Tags         stream
// @Param        userId query string true "Subscriber id"
// @Param        roomId query string false "Room to follow"
// @Param        recipientId query string false "Direct conversation partner"
// @Success      101 "Switching protocols"
// @Failure      400 {object} json.ErrorResponse
// @Failure      404 {object} json.ErrorResponse "Room not found"
// @Router       /stream [get]
func (h *Handler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID := query.Get("userId")
	roomID := query.Get("roomId")
	recipientID := query.Get("recipientId")

	if userID == "" {
		json.WriteBadRequestError(w, "userId is required")
		return
	}
	if (roomID == "") == (recipientID == "") {
		json.WriteBadRequestError(w, "exactly one of roomId or recipientId is required")
		return
	}

	key := domain.DirectKey(userID, recipientID)
	if roomID != "" {
		err := h.store.View(r.Context(), func(tx domain.StoreTx) error {
			_, err := tx.Room(roomID)
			return err
		})
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteNotFoundError(w, "Room not found")
			return
		case err != nil:
			json.WriteInternalError(w)
			return
		}
		key = domain.RoomKey(roomID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.Warn(logging.Websocket, logging.Subscription, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.UserID:       userID,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, userID, key, h.buffer)
	if !h.core.Register(client) {
		_ = conn.Close()
		return
	}

	h.logger.Debug(logging.Websocket, logging.Subscription, "subscriber connected", map[logging.ExtraKey]any{
		logging.UserID:       userID,
		logging.Conversation: key,
	})

	go client.WriteMessage()
	go client.ReadMessage(h.core)
}
