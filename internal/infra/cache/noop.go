package cache

import (
	"context"

	"install-scheduler/internal/usecase/catalog"
)

// NoopCache always misses; used when Redis is disabled.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) error  { return catalog.ErrCacheMiss }
func (NoopCache) Set(context.Context, string, any) error  { return nil }
func (NoopCache) Delete(context.Context, ...string) error { return nil }


