package audit

import (
	"context"

	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/log"
)

// Audit actions for the messaging service.
const (
	ActionSendMessage   = "message.send"
	ActionDeleteMessage = "message.delete"
	ActionMarkRead      = "message.mark_read"
	ActionPlayRequest   = "request.play"
	ActionShopRequest   = "request.shop"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
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

// LogWithTarget emits an audit log naming the other party or object of
// the action.
func LogWithTarget(ctx context.Context, action string, userID, targetID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}
