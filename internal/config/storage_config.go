package config

import (
	"os"
	"path/filepath"
)

const (
	sessionBackendVar = "AGRO_SESSION_BACKEND"
	sessionFileVar    = "AGRO_SESSION_FILE"
	sessionKeyVar     = "AGRO_SESSION_KEY"
	redisAddrVar      = "AGRO_REDIS_ADDR"
	redisPasswordVar  = "AGRO_REDIS_PASSWORD"
	redisPrefixVar    = "AGRO_REDIS_PREFIX"

	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

type StorageConfig interface {
	GetSessionBackend() string
	GetSessionFile() string
	GetSessionKey() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisPrefix() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetSessionBackend() string {
	return GetEnv(sessionBackendVar, SessionBackendFile)
}

// GetSessionFile defaults to agroctl/session.json under the user config dir,
// or the working directory when no config dir can be resolved.
func (Storage) GetSessionFile() string {
	if path := os.Getenv(sessionFileVar); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".agroctl", "session.json")
	}
	return filepath.Join(dir, "agroctl", "session.json")
}

// GetSessionKey is the passphrase used to seal the session file. Empty leaves
// the file in plain JSON.
func (Storage) GetSessionKey() string {
	return GetEnv(sessionKeyVar, "")
}

func (Storage) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv(redisPasswordVar, "")
}

func (Storage) GetRedisPrefix() string {
	return GetEnv(redisPrefixVar, "agroctl:session:")
}
