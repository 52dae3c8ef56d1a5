package repository

import (
	"github.com/hilthontt/devtea/internal/domain"
)

func (tx *storeTx) Room(id string) (*domain.Room, error) {
	if id == "" {
		return nil, domain.ErrRoomNotFound
	}

	room, exists := tx.store.rooms[id]
	if !exists {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// Rooms returns rooms in creation order.
func (tx *storeTx) Rooms() []*domain.Room {
	rooms := make([]*domain.Room, 0, len(tx.store.roomOrder))
	for _, id := range tx.store.roomOrder {
		if room, ok := tx.store.rooms[id]; ok {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

// InsertRoom adds a room if its ID is unique.
func (tx *storeTx) InsertRoom(room *domain.Room) error {
	if !tx.writable {
		return domain.ErrReadOnlyTx
	}
	if room == nil || room.ID == "" {
		return domain.ErrInvalidInput
	}

	if _, exists := tx.store.rooms[room.ID]; exists {
		return domain.ErrRoomAlreadyExists
	}

	tx.store.rooms[room.ID] = room
	tx.store.roomOrder = append(tx.store.roomOrder, room.ID)

	return nil
}
