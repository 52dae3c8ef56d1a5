package membership

import (
	"github.com/hilthontt/devtea/internal/domain"
)

// The helpers below keep room.Members, session.JoinedRooms and the durable
// membership index in agreement. They must run inside a write transaction.

// Join adds the user to the room everywhere and focuses it. It reports
// whether the user was not a member before.
func Join(tx domain.StoreTx, session *domain.Session, room *domain.Room) bool {
	added := AutoJoin(tx, session, room)
	session.CurrentRoom = room.ID
	return added
}

// AutoJoin is Join without moving the user's focus. Sending to a room the
// user never joined goes through here.
func AutoJoin(tx domain.StoreTx, session *domain.Session, room *domain.Room) bool {
	added := room.Members.Add(session.UserID)
	session.JoinedRooms.Add(room.ID)
	tx.Memberships(session.UserID).Add(room.ID)
	return added
}

// Leave removes the user from the room everywhere and drops the focus if it
// pointed at the room. It reports whether the user was a member.
func Leave(tx domain.StoreTx, session *domain.Session, room *domain.Room) bool {
	removed := room.Members.Contains(session.UserID)
	room.Members.Remove(session.UserID)
	session.JoinedRooms.Remove(room.ID)
	tx.Memberships(session.UserID).Remove(room.ID)
	if session.CurrentRoom == room.ID {
		session.CurrentRoom = ""
	}
	return removed
}

// Restore rebuilds a fresh session's joined rooms from the durable index and
// puts the user back into each room that still exists.
func Restore(tx domain.StoreTx, session *domain.Session) {
	for _, roomID := range tx.Memberships(session.UserID).ToSlice() {
		room, err := tx.Room(roomID)
		if err != nil {
			continue
		}
		room.Members.Add(session.UserID)
		session.JoinedRooms.Add(roomID)
	}
}

// IsMember is true when the user is listed in the room's member set.
func IsMember(room *domain.Room, userID string) bool {
	return userID != "" && room.Members.Contains(userID)
}

func notifyMember(notifier domain.ConversationNotifier, eventType domain.MessageEventType, session *domain.Session, room *domain.Room) {
	notifier.Notify(domain.ConversationEvent{
		Type: eventType,
		Key:  domain.RoomKey(room.ID),
		Payload: domain.MemberChange{
			RoomID:      room.ID,
			UserID:      session.UserID,
			Username:    session.Username,
			MemberCount: room.MemberCount(),
		},
	})
}

// NotifyJoined pushes member.joined to the room's subscribers.
func NotifyJoined(notifier domain.ConversationNotifier, session *domain.Session, room *domain.Room) {
	notifyMember(notifier, domain.MemberJoined, session, room)
}

func NotifyLeft(notifier domain.ConversationNotifier, session *domain.Session, room *domain.Room) {
	notifyMember(notifier, domain.MemberLeft, session, room)
}
