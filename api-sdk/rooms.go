package apisdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/hilthontt/devtea/api-sdk/internal/requestconfig"
	"github.com/hilthontt/devtea/api-sdk/option"
)

type RoomService struct {
	Options []option.RequestOption
}

func NewRoomService(opts ...option.RequestOption) *RoomService {
	return &RoomService{opts}
}

type roomListResponse struct {
	Rooms []PublicRoom `json:"rooms"`
}

// List returns the public rooms without registering.
func (r *RoomService) List(ctx context.Context, opts ...option.RequestOption) ([]PublicRoom, error) {
	opts = slices.Concat(r.Options, opts)

	res := &roomListResponse{}
	if err := requestconfig.ExecuteNewRequest(ctx, http.MethodGet, "rooms", nil, res, opts...); err != nil {
		return nil, err
	}
	return res.Rooms, nil
}

type AuditLog struct {
	ID        string         `json:"id"`
	RoomID    string         `json:"roomId"`
	EventType string         `json:"eventType"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type auditLogResponse struct {
	RoomID string     `json:"roomId"`
	Logs   []AuditLog `json:"logs"`
}

// AuditLog reads the most recent audit entries of a room. limit <= 0 uses the
// server default.
func (r *RoomService) AuditLog(ctx context.Context, roomID string, limit int, opts ...option.RequestOption) ([]AuditLog, error) {
	opts = slices.Concat(r.Options, opts)
	if roomID == "" {
		return nil, ErrMissingIDParameter
	}

	path := fmt.Sprintf("rooms/%s/audit", url.PathEscape(roomID))
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	res := &auditLogResponse{}
	if err := requestconfig.ExecuteNewRequest(ctx, http.MethodGet, path, nil, res, opts...); err != nil {
		return nil, err
	}
	return res.Logs, nil
}
