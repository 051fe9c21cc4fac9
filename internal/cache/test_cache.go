package cache

import "sync"

// TestCache is a map backed Cache, for tests and local tooling.
type TestCache struct {
	cache map[string][]byte
	mutex sync.Mutex
}

func NewTestCache() *TestCache {
	return &TestCache{
		cache: make(map[string][]byte),
	}
}

func (c *TestCache) Get(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	val, ok := c.cache[key]
	return val, ok
}

func (c *TestCache) Set(key string, value []byte, _ int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = value
	return nil
}

func (c *TestCache) Del(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.cache, key)
}
