package rooms

import (
	"github.com/hilthontt/devtea/internal/application/usecases/room"
	"github.com/hilthontt/devtea/internal/domain"
)

// roomsResponse lists the public rooms
type roomsResponse struct {
	Rooms []room.PublicRoom `json:"rooms"`
}

// auditResponse is the recent audit trail of one room, newest first
type auditResponse struct {
	RoomID string                `json:"roomId" example:"general"`
	Logs   []domain.RoomAuditLog `json:"logs"`
}
