//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../mocks/mock_store.go -package=mocks
package repository

import (
	"context"
	"time"

	"github.com/weiawesome/offershare/internal/domain"
)

// Store is the persistence boundary for chats and messages.
type Store interface {
	CreateChat(ctx context.Context, chat *domain.Chat) error
	GetChat(ctx context.Context, chatID string) (*domain.Chat, error)
	FindChat(ctx context.Context, offerID, userA, userB string) (*domain.Chat, error)
	ListChatsByUser(ctx context.Context, userID string) ([]domain.Chat, error)

	// InsertMessage assigns the message id and creation time and stores it unread.
	InsertMessage(ctx context.Context, msg *domain.Message) error
	UpdateChatLastMessage(ctx context.Context, chatID, content string, at time.Time) error
	ListMessagesByChat(ctx context.Context, chatID string) ([]domain.Message, error)
	// SetMessagesRead flips unread messages not sent by excludingSender and
	// returns how many changed.
	SetMessagesRead(ctx context.Context, chatID, excludingSender string) (int64, error)

	// Transaction runs fn against a Store bound to a single transaction.
	Transaction(ctx context.Context, fn func(Store) error) error
}
