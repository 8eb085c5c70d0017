package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/agro-console/internal/config"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/sessions"
	"github.com/jrsteele09/agro-console/sessions/filestorage"
	"github.com/jrsteele09/agro-console/sessions/redisstorage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// OpenStorage opens the session backend named by the configuration. The
// returned closer is nil when there is nothing to release. A session file that
// cannot be read is discarded with a warning so the user can log in again.
func OpenStorage(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (sessions.Storage, func() error, error) {
	switch backend := cfg.GetSessionBackend(); backend {
	case config.SessionBackendFile:
		var options []filestorage.Option
		if key := cfg.GetSessionKey(); key != "" {
			options = append(options, filestorage.WithPassphrase(key))
		}
		storage, err := filestorage.New(cfg.GetSessionFile(), options...)
		if errors.Is(err, filestorage.ErrWrongPassphrase) || errors.Is(err, apperrors.ErrCorruptSession) {
			logger.Warn().Err(err).Str("path", cfg.GetSessionFile()).Msg("discarding unreadable session file")
			storage, err = filestorage.New(cfg.GetSessionFile(), append(options, filestorage.WithDiscardUnreadable())...)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("[OpenStorage] opening session file: %w", err)
		}
		return storage, nil, nil

	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("[OpenStorage] connecting to redis at %s: %w", cfg.GetRedisAddr(), err)
		}
		return redisstorage.New(client, cfg.GetRedisPrefix()), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("[OpenStorage] unknown session backend %q (want %q or %q)", backend, config.SessionBackendFile, config.SessionBackendRedis)
	}
}
