package domain

import "time"

const DefaultOnlineWindow = 5 * time.Minute

// Session is the server-side record of a registered client, keyed by user id.
type Session struct {
	UserID      string
	Username    string
	CurrentRoom string
	LastSeen    time.Time
	JoinedRooms *RoomList
}

func NewSession(userID, username string, joined *RoomList) *Session {
	if joined == nil {
		joined = NewRoomList()
	}
	return &Session{
		UserID:      userID,
		Username:    username,
		LastSeen:    time.Now(),
		JoinedRooms: joined,
	}
}

func (s *Session) Touch(now time.Time) {
	s.LastSeen = now
}

func (s *Session) IsOnline(now time.Time, window time.Duration) bool {
	return now.Sub(s.LastSeen) < window
}

func (s *Session) Clone() Session {
	cpy := *s
	cpy.JoinedRooms = s.JoinedRooms.Clone()
	return cpy
}
