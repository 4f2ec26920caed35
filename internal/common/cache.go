package common

import (
	"time"
	"unsafe"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog/log"
)

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

type FreeCache struct {
	cache *freecache.Cache
}

// NewCache returns an in-memory cache of the given size in megabytes,
// or a cache that never stores anything when the size is not positive
func NewCache(sizeMB int) Cache {
	if sizeMB <= 0 {
		log.Info().Msg("Cache disabled")
		return &noopCache{}
	}
	log.Info().Msgf("Cache initialized: %dMB", sizeMB)
	return &FreeCache{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is only read
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *FreeCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *FreeCache) Set(key string, value []byte, ttl time.Duration) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, max(int(ttl.Seconds()), 1))
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)           { return nil, false }
func (n *noopCache) Set(_ string, _ []byte, _ time.Duration) {}
