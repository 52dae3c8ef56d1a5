package apisdk

type MessageKind string

const (
	KindRoom   MessageKind = "room"
	KindDirect MessageKind = "dm"
)

type Message struct {
	ID          string      `json:"id"`
	User        string      `json:"user"`
	UserID      string      `json:"userId,omitempty"`
	Content     string      `json:"content"`
	Timestamp   int64       `json:"timestamp"`
	Edited      bool        `json:"edited,omitempty"`
	Type        MessageKind `json:"type"`
	RoomID      string      `json:"roomId,omitempty"`
	RecipientID string      `json:"recipientId,omitempty"`
}

type Registration struct {
	JoinedRooms    []string `json:"joinedRooms"`
	AvailableRooms []string `json:"availableRooms"`
}

type RoomJoined struct {
	RoomID      string    `json:"roomId"`
	Messages    []Message `json:"messages"`
	MemberCount int       `json:"memberCount"`
}

type RoomLeft struct {
	RoomID      string `json:"roomId"`
	MemberCount int    `json:"memberCount"`
}

type RoomMessages struct {
	RoomID      string    `json:"roomId"`
	Messages    []Message `json:"messages"`
	MemberCount int       `json:"memberCount"`
}

type DirectMessages struct {
	RecipientID string    `json:"recipientId"`
	Messages    []Message `json:"messages"`
}

// Messages is the result of get_messages: exactly one of Room or Direct is
// set depending on the requested kind.
type Messages struct {
	Room   *RoomMessages
	Direct *DirectMessages
}

type MessageDeleted struct {
	MessageID string `json:"messageId"`
}

type SearchHit struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"memberCount"`
	IsMember    bool   `json:"isMember"`
}

type SearchResults struct {
	Rooms []SearchHit `json:"rooms"`
	Query string      `json:"query"`
}

type CreatedRoom struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedBy   string   `json:"createdBy"`
	CreatedAt   int64    `json:"createdAt"`
	Members     []string `json:"members"`
	MemberCount int      `json:"memberCount"`
	IsPublic    bool     `json:"isPublic"`
	IsPrivate   bool     `json:"isPrivate"`
}

type RoomListing struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"memberCount"`
	IsMember    bool   `json:"isMember"`
	IsJoined    bool   `json:"isJoined"`
}

type RoomList struct {
	Rooms []RoomListing `json:"rooms"`
}

// PublicRoom is an entry of the anonymous room listing.
type PublicRoom struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"memberCount"`
}

type JoinedRooms struct {
	Rooms []RoomListing `json:"rooms"`
}

type OnlineUser struct {
	UserID      string   `json:"userId"`
	Username    string   `json:"username"`
	CurrentRoom string   `json:"currentRoom,omitempty"`
	JoinedRooms []string `json:"joinedRooms"`
}

type OnlineUsers struct {
	Users []OnlineUser `json:"users"`
}

type RoomMember struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsOnline bool   `json:"isOnline"`
}

type RoomMembers struct {
	RoomID  string       `json:"roomId"`
	Members []RoomMember `json:"members"`
}
