//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../mocks/mock_message_sender.go -package=mocks
package handler

import (
	"context"

	"github.com/weiawesome/offershare/internal/domain"
)

// MessageSender is the write path shared by the websocket and REST surfaces.
type MessageSender interface {
	SendMessage(ctx context.Context, draft domain.Draft) (*domain.Message, error)
}

// PresenceChecker reports whether a user holds a live connection anywhere.
type PresenceChecker interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
}
