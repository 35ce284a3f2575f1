package parser

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies content scanned as a given language. Paths are not part
// of the key, so copies of a file share one entry.
type cacheKey struct {
	language string
	sum      uint64
	size     int
	secrets  bool
}

func newCacheKey(language string, content []byte, secrets bool) cacheKey {
	return cacheKey{
		language: language,
		sum:      xxhash.Sum64(content),
		size:     len(content),
		secrets:  secrets,
	}
}

// resultCache is a fixed size LRU of scan outcomes. A nil cache stores
// nothing.
type resultCache struct {
	lru *lru.Cache[cacheKey, *fileScan]
}

func newResultCache(size int) *resultCache {
	if size <= 0 {
		return &resultCache{}
	}
	c, err := lru.New[cacheKey, *fileScan](size)
	if err != nil {
		return &resultCache{}
	}
	return &resultCache{lru: c}
}

func (c *resultCache) get(key cacheKey) (*fileScan, bool) {
	if c.lru == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *resultCache) add(key cacheKey, s *fileScan) {
	if c.lru == nil {
		return
	}
	c.lru.Add(key, s)
}

// CacheLen reports how many contents are cached.
func (p *Parser) CacheLen() int {
	if p.cache.lru == nil {
		return 0
	}
	return p.cache.lru.Len()
}
