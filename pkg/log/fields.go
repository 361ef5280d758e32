package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldUserID = "user_id"

	// Service
	FieldService  = "service"
	FieldInstance = "instance"

	// Chat
	FieldChatID      = "chat_id"
	FieldMessageID   = "message_id"
	FieldRecipientID = "recipient_id"
	FieldConnID      = "conn_id"
	FieldFrameType   = "frame_type"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
