package domain

// StoreTx is the view of the conversation store inside one View or Update
// call. Pointers it returns must not be retained after the call returns.
type StoreTx interface {
	Room(id string) (*Room, error)
	Rooms() []*Room
	InsertRoom(room *Room) error

	Session(userID string) (*Session, error)
	Sessions() []*Session
	SaveSession(session *Session) error

	// Memberships is the durable user -> rooms index in join order. It
	// outlives sessions.
	Memberships(userID string) *RoomList

	Messages(key ConversationKey) []Message
	AppendMessage(key ConversationKey, message Message) error
	FindMessage(key ConversationKey, messageID string) (Message, error)
	ReplaceMessage(key ConversationKey, message Message) error
	RemoveMessage(key ConversationKey, messageID string) error
}
