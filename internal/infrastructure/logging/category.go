package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Redis           Category = "Redis"
	RabbitMQ        Category = "RabbitMQ"
	MongoDB         Category = "MongoDB"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
	Store           Category = "Store"
	Websocket       Category = "Websocket"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Chat
	Command      SubCategory = "Command"
	Membership   SubCategory = "Membership"
	Messaging    SubCategory = "Messaging"
	RoomCatalog  SubCategory = "RoomCatalog"
	Identity     SubCategory = "Identity"
	Audit        SubCategory = "Audit"
	Subscription SubCategory = "Subscription"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RequestBody  ExtraKey = "RequestBody"
	ResponseBody ExtraKey = "ResponseBody"
	ErrorMessage ExtraKey = "ErrorMessage"

	UserID       ExtraKey = "UserId"
	RoomID       ExtraKey = "RoomId"
	MessageID    ExtraKey = "MessageId"
	CommandType  ExtraKey = "CommandType"
	Conversation ExtraKey = "Conversation"
)
