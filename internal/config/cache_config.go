package config

import "time"

const cacheTTLVar = "AGRO_CACHE_TTL"

type Cache struct{}

var _ CacheConfig = Cache{}

// GetCacheTTL is how long a fetched list or statistic is served from the query
// cache before it is fetched again. Zero disables caching.
func (Cache) GetCacheTTL() time.Duration {
	return GetDurationEnv(cacheTTLVar, 30*time.Second)
}
