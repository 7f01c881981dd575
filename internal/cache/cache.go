package cache

import (
	"context"
	"time"
)

// Cache is a minimal interface for key value caching of lookup results
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}
