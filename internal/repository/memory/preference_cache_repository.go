package memory

import (
	"ai-chathub-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// PreferenceCacheRepository is the local tier of the model-preference
// fallback chain. It answers reads before the database round trip resolves
// and keeps the last selection sticky when the remote write fails.
type PreferenceCacheRepository struct {
	cache *cache.Cache
}

func NewPreferenceCacheRepository() *PreferenceCacheRepository {
	return &PreferenceCacheRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *PreferenceCacheRepository) Get(userID string) (*entity.UserPreference, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*entity.UserPreference), true
	}
	return nil, false
}

func (r *PreferenceCacheRepository) Set(userID string, pref *entity.UserPreference) {
	r.cache.Set(userID, pref, cache.NoExpiration)
}

func (r *PreferenceCacheRepository) Delete(userID string) {
	r.cache.Delete(userID)
}
