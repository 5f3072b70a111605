// Package cache is the in-process response cache for the read-mostly
// list endpoints. One instance is constructed at startup and handed to
// the router, nothing here is package-global.
package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v2"
)

type Store struct {
	c *ttlcache.Cache
}

func New() *Store {
	c := ttlcache.NewCache()
	c.SkipTTLExtensionOnHit(true)

	return &Store{c: c}
}

// Get returns the cached value and whether it was present. Expired
// entries are evicted lazily by the backing cache on read.
func (s *Store) Get(key string) (any, bool) {
	v, err := s.c.Get(key)
	if err != nil {
		return nil, false
	}

	return v, true
}

func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.c.SetWithTTL(key, value, ttl)
}

func (s *Store) Delete(key string) {
	s.c.Remove(key)
}

// Clear drops everything. Mutations call this unconditionally, coarse
// but correct for the write volume this sees.
func (s *Store) Clear() {
	s.c.Purge()
}

// DeleteByPrefix drops every key starting with prefix.
func (s *Store) DeleteByPrefix(prefix string) {
	for _, k := range s.c.GetKeys() {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			s.c.Remove(k)
		}
	}
}

func (s *Store) Close() {
	s.c.Close()
}
