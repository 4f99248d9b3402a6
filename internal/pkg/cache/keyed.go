package cache

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"exusiai.dev/gommon/constant"
)

var ErrNotFound = errors.New("cache: key not found")

// Keyed is an in-process cache of T values under a key prefix. Concurrent loads of
// the same missing key are collapsed into one call.
type Keyed[T any] struct {
	// m serializes Take so a value is handed out at most once
	m sync.Mutex

	prefix string
	ttl    time.Duration
	c      *cache.Cache
	g      singleflight.Group
}

func NewKeyed[T any](prefix string, ttl time.Duration) *Keyed[T] {
	return &Keyed[T]{
		prefix: prefix + constant.CacheSep,
		ttl:    ttl,
		c:      cache.New(ttl, time.Minute),
	}
}

func (c *Keyed[T]) key(key string) string {
	return c.prefix + key
}

func (c *Keyed[T]) Get(key string) (T, error) {
	v, ok := c.c.Get(c.key(key))
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return v.(T), nil
}

func (c *Keyed[T]) Set(key string, value T) {
	c.c.Set(c.key(key), value, c.ttl)
}

func (c *Keyed[T]) Delete(key string) {
	c.c.Delete(c.key(key))
}

// Take returns the value under key and removes it.
func (c *Keyed[T]) Take(key string) (T, error) {
	c.m.Lock()
	defer c.m.Unlock()
	v, err := c.Get(key)
	if err != nil {
		return v, err
	}
	c.Delete(key)
	return v, nil
}

// GetOrLoad returns the cached value for key, or runs load once for all concurrent
// callers and caches its result. Errors are not cached.
func (c *Keyed[T]) GetOrLoad(key string, load func() (T, error)) (T, error) {
	if v, err := c.Get(key); err == nil {
		return v, nil
	}

	v, err, _ := c.g.Do(c.key(key), func() (any, error) {
		if v, err := c.Get(key); err == nil {
			return v, nil
		}
		value, err := load()
		if err != nil {
			log.Debug().Err(err).Str("key", c.key(key)).Msg("failed to load value in GetOrLoad")
			return value, err
		}
		c.Set(key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
