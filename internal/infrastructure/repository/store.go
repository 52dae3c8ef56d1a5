package repository

import (
	"context"
	"sync"

	"github.com/hilthontt/devtea/internal/domain"
)

// conversationStore keeps rooms, sessions, the membership index and every
// message log behind one lock.
type conversationStore struct {
	rooms       map[string]*domain.Room
	roomOrder   []string
	sessions    map[string]*domain.Session
	memberships map[string]*domain.RoomList // userID -> roomIDs
	messages    map[domain.ConversationKey][]domain.Message
	capacity    uint // per log, 0 = unbounded
	mu          *sync.RWMutex
}

func NewConversationStore(capacity uint) domain.ConversationStore {
	return &conversationStore{
		rooms:       make(map[string]*domain.Room),
		sessions:    make(map[string]*domain.Session),
		memberships: make(map[string]*domain.RoomList),
		messages:    make(map[domain.ConversationKey][]domain.Message),
		capacity:    capacity,
		mu:          &sync.RWMutex{},
	}
}

func (s *conversationStore) View(ctx context.Context, fn func(tx domain.StoreTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&storeTx{store: s})
}

func (s *conversationStore) Update(ctx context.Context, fn func(tx domain.StoreTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(&storeTx{store: s, writable: true})
}

type storeTx struct {
	store    *conversationStore
	writable bool
}

func (tx *storeTx) Session(userID string) (*domain.Session, error) {
	if userID == "" {
		return nil, domain.ErrUserNotFound
	}

	session, ok := tx.store.sessions[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return session, nil
}

func (tx *storeTx) Sessions() []*domain.Session {
	sessions := make([]*domain.Session, 0, len(tx.store.sessions))
	for _, session := range tx.store.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func (tx *storeTx) SaveSession(session *domain.Session) error {
	if !tx.writable {
		return domain.ErrReadOnlyTx
	}
	if session == nil || session.UserID == "" {
		return domain.ErrInvalidInput
	}

	tx.store.sessions[session.UserID] = session
	return nil
}

func (tx *storeTx) Memberships(userID string) *domain.RoomList {
	rooms, ok := tx.store.memberships[userID]
	if ok {
		return rooms
	}

	rooms = domain.NewRoomList()
	if tx.writable && userID != "" {
		tx.store.memberships[userID] = rooms
	}
	return rooms
}
