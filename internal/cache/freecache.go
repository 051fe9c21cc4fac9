package cache

import (
	"github.com/coocood/freecache"
)

const megabyte = 1024 * 1024

// FreeCache is an in-process, size bounded cache. Safe for concurrent use.
type FreeCache struct {
	cache *freecache.Cache
}

func NewFreeCache(sizeMB int) *FreeCache {
	return &FreeCache{
		cache: freecache.NewCache(sizeMB * megabyte),
	}
}

func (c *FreeCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		// freecache.ErrNotFound
		return nil, false
	}
	return val, true
}

func (c *FreeCache) Set(key string, value []byte, expireSeconds int) error {
	return c.cache.Set([]byte(key), value, expireSeconds)
}

func (c *FreeCache) Del(key string) {
	c.cache.Del([]byte(key))
}

func (c *FreeCache) EntryCount() int64 {
	return c.cache.EntryCount()
}
