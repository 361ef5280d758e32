package cache

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/offershare/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// ParticipantCache stores chat participant pairs. Pairs never change after
// a chat is created, so entries need no invalidation.
type ParticipantCache interface {
	Get(ctx context.Context, chatID string) (*domain.Participants, error)
	Set(ctx context.Context, p *domain.Participants, ttl time.Duration) error
	Close() error
}
