package messaging

const (
	RoomAuditQueue  = "room_audit"
	DeadLetterQueue = "dead_letter_queue"
)
