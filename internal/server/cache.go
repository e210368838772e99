package server

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru"

	"github.com/example/go-wordrnn/internal/text"
)

// tokenCache memoizes tokenize results. A nil *tokenCache is a disabled cache.
type tokenCache struct {
	lru *lru.Cache
}

func newTokenCache(size int) *tokenCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil
	}
	return &tokenCache{lru: c}
}

func cacheKey(mode text.Mode, pristine bool, s string) string {
	return string(mode) + "\x00" + strconv.FormatBool(pristine) + "\x00" + s
}

// get returns the cached tokens. Callers must not modify them.
func (c *tokenCache) get(key string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

func (c *tokenCache) add(key string, tokens []string) {
	if c == nil {
		return
	}
	c.lru.Add(key, tokens)
}

func (c *tokenCache) size() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
