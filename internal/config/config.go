package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	CacheConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
}

type CacheConfig interface {
	GetCacheTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Cache
}

func New() Config {
	return mainConfig{}
}
