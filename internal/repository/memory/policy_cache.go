package memory

import (
	"time"

	"rich-text-bridge/pkg/policy"

	"github.com/patrickmn/go-cache"
)

// PolicyCache keeps parsed policies keyed by field-configuration fingerprint.
type PolicyCache struct {
	cache *cache.Cache
}

func NewPolicyCache(ttl time.Duration) *PolicyCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PolicyCache{
		cache: cache.New(ttl, ttl/6),
	}
}

func (r *PolicyCache) Save(fingerprint string, p policy.Policy) {
	r.cache.Set(fingerprint, p, cache.DefaultExpiration)
}

func (r *PolicyCache) Get(fingerprint string) (policy.Policy, bool) {
	if x, found := r.cache.Get(fingerprint); found {
		return x.(policy.Policy), true
	}
	return policy.Policy{}, false
}

func (r *PolicyCache) Delete(fingerprint string) {
	r.cache.Delete(fingerprint)
}

func (r *PolicyCache) Len() int {
	return r.cache.ItemCount()
}
