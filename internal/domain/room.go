package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

const SystemAuthor = "DevTea Bot"

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	invalidIDSymbol = regexp.MustCompile(`[^a-z0-9-]`)
)

type Room struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	Members     mapset.Set[string]
	IsPublic    bool
}

// DeriveRoomID lowercases the name, turns whitespace runs into hyphens and
// strips everything outside [a-z0-9-].
func DeriveRoomID(name string) string {
	id := strings.ToLower(name)
	id = whitespaceRun.ReplaceAllString(id, "-")
	return invalidIDSymbol.ReplaceAllString(id, "")
}

func NewRoom(name, description, createdBy string) (*Room, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRoomName)
	}

	id := DeriveRoomID(name)
	if strings.Trim(id, "-") == "" {
		return nil, fmt.Errorf("%w: %q has no usable characters", ErrInvalidRoomName, name)
	}

	return &Room{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
		Members:     mapset.NewThreadUnsafeSet(createdBy),
		IsPublic:    true,
	}, nil
}

// WelcomeMessage is the system message every created room starts with.
func (r *Room) WelcomeMessage(creatorName string) Message {
	tail := r.Description
	if tail == "" {
		tail = "Start chatting!"
	}

	return Message{
		ID:        uuid.NewString(),
		Author:    SystemAuthor,
		Content:   fmt.Sprintf("Welcome to %s! 🎉 This room was created by %s. %s", r.Name, creatorName, tail),
		Timestamp: r.CreatedAt.UnixMilli(),
		Kind:      KindRoom,
		RoomID:    r.ID,
	}
}

// Matches reports a case-insensitive substring hit on name, description or id.
func (r *Room) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.Description), q) ||
		strings.Contains(strings.ToLower(r.ID), q)
}

// Clone returns a copy safe to read after the store lock is released.
func (r *Room) Clone() Room {
	cpy := *r
	if r.Members != nil {
		cpy.Members = r.Members.Clone()
	} else {
		cpy.Members = mapset.NewThreadUnsafeSet[string]()
	}
	return cpy
}

func (r *Room) MemberCount() int {
	if r.Members == nil {
		return 0
	}
	return r.Members.Cardinality()
}
