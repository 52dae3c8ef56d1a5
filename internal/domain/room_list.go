package domain

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// RoomList is a set of room ids that remembers the order rooms were joined in.
// Adding an id that is already present keeps its original position.
type RoomList struct {
	ids   mapset.Set[string]
	order []string
}

func NewRoomList(ids ...string) *RoomList {
	l := &RoomList{ids: mapset.NewThreadUnsafeSet[string]()}
	for _, id := range ids {
		l.Add(id)
	}
	return l
}

// Add reports whether the id was not in the list before.
func (l *RoomList) Add(id string) bool {
	if !l.ids.Add(id) {
		return false
	}
	l.order = append(l.order, id)
	return true
}

// Remove reports whether the id was in the list.
func (l *RoomList) Remove(id string) bool {
	if !l.ids.Contains(id) {
		return false
	}
	l.ids.Remove(id)
	l.order = slices.DeleteFunc(l.order, func(v string) bool { return v == id })
	return true
}

func (l *RoomList) Contains(id string) bool {
	return l.ids.Contains(id)
}

func (l *RoomList) Cardinality() int {
	return l.ids.Cardinality()
}

// ToSlice returns the ids oldest join first.
func (l *RoomList) ToSlice() []string {
	if len(l.order) == 0 {
		return []string{}
	}
	return slices.Clone(l.order)
}

func (l *RoomList) Clone() *RoomList {
	return &RoomList{ids: l.ids.Clone(), order: slices.Clone(l.order)}
}
