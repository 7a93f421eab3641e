package prefs

import (
	"context"
	"time"

	"storefront/internal/cache"
)

const keyPrefix = "prefs:"

// CacheStore guarda las preferencias en el caché en memoria del servicio
type CacheStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewCacheStore(c *cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, ttl: ttl}
}

func (s *CacheStore) Load(ctx context.Context, session string) (Preferences, error) {
	if err := validSession(session); err != nil {
		return Preferences{}, err
	}
	var p Preferences
	found, err := s.cache.Unmarshal(keyPrefix+session, &p)
	if err != nil {
		return Preferences{}, err
	}
	if !found {
		return Defaults(), nil
	}
	return p.Normalize(), nil
}

func (s *CacheStore) Save(ctx context.Context, session string, p Preferences) error {
	if err := validSession(session); err != nil {
		return err
	}
	return s.cache.Marshal(keyPrefix+session, p.Normalize(), s.ttl)
}
