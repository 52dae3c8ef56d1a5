package domain

// RoomMember is a room member as seen by other users.
type RoomMember struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsOnline bool   `json:"isOnline"`
}

// OnlineUser is a session active within the presence window.
type OnlineUser struct {
	UserID      string   `json:"userId"`
	Username    string   `json:"username"`
	CurrentRoom string   `json:"currentRoom,omitempty"`
	JoinedRooms []string `json:"joinedRooms"`
}

// MemberChange is the payload of member.joined and member.left events.
type MemberChange struct {
	RoomID      string `json:"roomId"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	MemberCount int    `json:"memberCount"`
}
