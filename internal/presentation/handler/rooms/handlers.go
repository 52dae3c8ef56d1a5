package rooms

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/devtea/internal/application/usecases/room"
	"github.com/hilthontt/devtea/internal/domain"
	"github.com/hilthontt/devtea/internal/infrastructure/json"
	"github.com/hilthontt/devtea/internal/infrastructure/logging"
)

const defaultAuditLimit = 50

type Handler struct {
	roomUseCase room.RoomUseCase
	audit       domain.RoomAuditRepository
	logger      logging.Logger
}

// NewHandler wires the room endpoints. audit may be nil when the audit log
// is disabled.
func NewHandler(roomUseCase room.RoomUseCase, audit domain.RoomAuditRepository, logger logging.Logger) *Handler {
	return &Handler{
		roomUseCase: roomUseCase,
		audit:       audit,
		logger:      logger,
	}
}

// ListRoomsHandler godoc
// @Summary      List public rooms
// @Description  Returns every public room with its member count
// @Tags         rooms
// @Produce      json
// @Success      200 {object} roomsResponse
// @Failure      500 {object} json.ErrorResponse
// @Router       /rooms [get]
func (h *Handler) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomUseCase.Public(r.Context())
	if err != nil {
		h.logger.Error(logging.RequestResponse, logging.RoomCatalog, "failed to list rooms", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w)
		return
	}

	json.Write(w, http.StatusOK, roomsResponse{Rooms: rooms})
}

// GetAuditLogHandler godoc
// @Summary      Room audit log
// @Description  Returns the most recent audit entries of a room. Only available when the audit log is enabled.
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        limit query int false "Maximum entries (default 50, max 500)"
// @Success      200 {object} auditResponse
// @Failure      400 {object} json.ErrorResponse "Invalid limit"
// @Failure      404 {object} json.ErrorResponse "Audit log disabled"
// @Failure      500 {object} json.ErrorResponse
// @Router       /rooms/{roomId}/audit [get]
func (h *Handler) GetAuditLogHandler(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		json.WriteNotFoundError(w, "Audit log is disabled")
		return
	}

	roomID := chi.URLParam(r, "roomId")

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			json.WriteBadRequestError(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	logs, err := h.audit.GetByRoomID(r.Context(), roomID, limit)
	if err != nil {
		h.logger.Error(logging.MongoDB, logging.Audit, "failed to read audit log", map[logging.ExtraKey]any{
			logging.RoomID:       roomID,
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w)
		return
	}
	if logs == nil {
		logs = []domain.RoomAuditLog{}
	}

	json.Write(w, http.StatusOK, auditResponse{RoomID: roomID, Logs: logs})
}
