package room

import "github.com/hilthontt/devtea/internal/domain"

// Created is the room_created payload.
type Created struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedBy   string   `json:"createdBy"`
	CreatedAt   int64    `json:"createdAt"` // unix milliseconds
	Members     []string `json:"members"`
	MemberCount int      `json:"memberCount"`
	IsPublic    bool     `json:"isPublic"`
	IsPrivate   bool     `json:"isPrivate"`
}

// Listing is one entry of rooms_list and joined_rooms.
type Listing struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"memberCount"`
	IsMember    bool   `json:"isMember"`
	IsJoined    bool   `json:"isJoined"`
}

type SearchResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"memberCount"`
	IsMember    bool   `json:"isMember"`
}

// PublicRoom is what anonymous callers of the room listing see.
type PublicRoom struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"memberCount"`
}

func newCreated(r *domain.Room) *Created {
	members := r.Members.ToSlice()
	return &Created{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.UnixMilli(),
		Members:     members,
		MemberCount: len(members),
		IsPublic:    r.IsPublic,
		IsPrivate:   !r.IsPublic,
	}
}
