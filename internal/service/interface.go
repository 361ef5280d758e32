//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../mocks/mock_chat_service.go -package=mocks
package service

import (
	"context"

	"github.com/weiawesome/offershare/internal/domain"
)

// ChatService serves history, read-state and chat lifecycle calls.
type ChatService interface {
	GetMessages(ctx context.Context, chatID, requesterID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, chatID, readerID string) (int64, error)
	GetChat(ctx context.Context, chatID, requesterID string) (*domain.Chat, error)
	ListUserChats(ctx context.Context, userID string) ([]domain.Chat, error)
	CreateChat(ctx context.Context, offerID, userA, userB string) (*domain.Chat, error)
}
