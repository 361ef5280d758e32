package audit

import (
	"context"

	"github.com/weiawesome/offershare/pkg/log"
)

// Audit actions for chat-service.
const (
	ActionConnect     = "chat.connect"
	ActionDisconnect  = "chat.disconnect"
	ActionSupersede   = "chat.supersede"
	ActionSendMessage = "chat.send_message"
	ActionMarkRead    = "chat.mark_read"
	ActionCreateChat  = "chat.create_chat"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
