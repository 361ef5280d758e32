package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/pkg/log"
)

// ChatGetter is the slice of the store the loader reads through to.
type ChatGetter interface {
	GetChat(ctx context.Context, chatID string) (*domain.Chat, error)
}

// ParticipantLoader resolves a chat's participants from the cache, falling
// back to the store. Concurrent misses for one chat share a single lookup.
type ParticipantLoader struct {
	cache ParticipantCache
	chats ChatGetter
	ttl   time.Duration
	sf    singleflight.Group
}

func NewParticipantLoader(c ParticipantCache, chats ChatGetter, ttl time.Duration) *ParticipantLoader {
	return &ParticipantLoader{
		cache: c,
		chats: chats,
		ttl:   ttl,
	}
}

// Load returns the participants of chatID or domain.ErrChatNotFound.
func (l *ParticipantLoader) Load(ctx context.Context, chatID string) (domain.Participants, error) {
	cached, err := l.cache.Get(ctx, chatID)
	if err == nil {
		return *cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// Log error but continue to fetch from DB
		lg := log.Ctx(ctx)
		lg.Warn().Err(err).Str(log.FieldChatID, chatID).Msg("cache get error")
	}

	result, err, _ := l.sf.Do(chatID, func() (interface{}, error) {
		// A flight that just finished may have filled the cache after our miss.
		if cached, err := l.cache.Get(ctx, chatID); err == nil {
			return *cached, nil
		}

		chat, err := l.chats.GetChat(ctx, chatID)
		if err != nil {
			return nil, err
		}

		p := chat.Participants()
		if err := l.cache.Set(ctx, &p, l.ttl); err != nil {
			lg := log.Ctx(ctx)
			lg.Warn().Err(err).Str(log.FieldChatID, chatID).Msg("cache set error")
		}
		return p, nil
	})
	if err != nil {
		return domain.Participants{}, err
	}

	p, ok := result.(domain.Participants)
	if !ok {
		return domain.Participants{}, fmt.Errorf("unexpected result type from singleflight")
	}
	return p, nil
}
