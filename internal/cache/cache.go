package cache

import "encoding/json"

var (
	_ Cache = (*FreeCache)(nil)
	_ Cache = (*TestCache)(nil)
)

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, expireSeconds int) error
	Del(key string)
}

// GetJSON reads key and unmarshals it into v. A value that cannot be unmarshaled counts as a miss.
func GetJSON(c Cache, key string, v any) bool {
	raw, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func SetJSON(c Cache, key string, v any, expireSeconds int) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, raw, expireSeconds)
}
