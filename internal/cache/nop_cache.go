package cache

import (
	"context"
	"time"

	"github.com/weiawesome/offershare/internal/domain"
)

// NopCache always misses. Used when redis is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.Participants, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(context.Context, *domain.Participants, time.Duration) error { return nil }

func (NopCache) Close() error { return nil }
