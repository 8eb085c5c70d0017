package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/token"
	"github.com/jrsteele09/agro-console/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Store is the single source of truth for the console's authentication state.
// Every mutation is written to the injected Storage before it becomes visible
// in memory, so a new process can Restore exactly what the last one saw.
type Store struct {
	storage Storage
	logger  zerolog.Logger

	mu      sync.RWMutex
	session Session
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty Store backed by storage. Call Restore to load a
// previously persisted session.
func NewStore(storage Storage, options ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("[NewStore] storage is required: %w", apperrors.ErrInvalidStorage)
	}

	s := &Store{
		storage: storage,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Restore loads the persisted session. It returns true when all three keys were
// present and the in-memory session is now populated; otherwise the in-memory
// session is emptied and false is returned so the caller can send the user to
// login. A user record that cannot be decoded is reported as ErrCorruptSession.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	values := make(map[string]string, len(Keys))
	for _, key := range Keys {
		value, ok, err := s.storage.Get(ctx, key)
		if err != nil {
			return false, apperrors.Wrapf(err, "[Restore] reading %q", key)
		}
		if !ok || value == "" {
			s.set(Session{})
			s.logger.Debug().Str("missing", key).Msg("no stored session")
			return false, nil
		}
		values[key] = value
	}

	var user users.User
	if err := json.Unmarshal([]byte(values[UserKey]), &user); err != nil {
		s.set(Session{})
		return false, fmt.Errorf("[Restore] decoding user: %w: %v", apperrors.ErrCorruptSession, err)
	}

	s.set(Session{
		AccessToken:  values[AccessTokenKey],
		RefreshToken: values[RefreshTokenKey],
		User:         &user,
	})
	s.logger.Debug().Str("user", user.ID).Msg("session restored")
	return true, nil
}

// SetSession replaces the whole session after a login. If storage rejects any
// write, the keys already written are put back to the previous session (or
// removed when there was none) and memory is left unchanged.
func (s *Store) SetSession(ctx context.Context, accessToken, refreshToken string, user *users.User) error {
	next := Session{AccessToken: accessToken, RefreshToken: refreshToken, User: user}
	if !next.IsComplete() {
		return fmt.Errorf("[SetSession] access token, refresh token and user are required: %w", apperrors.ErrInvalidInput)
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return apperrors.Wrapf(err, "[SetSession] encoding user")
	}

	values := map[string]string{
		AccessTokenKey:  accessToken,
		RefreshTokenKey: refreshToken,
		UserKey:         string(userJSON),
	}
	previous := s.Current()
	written := make([]string, 0, len(Keys))
	for _, key := range Keys {
		if err := s.storage.Set(ctx, key, values[key]); err != nil {
			s.rollback(ctx, previous, written)
			return apperrors.Wrapf(err, "[SetSession] writing %q", key)
		}
		written = append(written, key)
	}

	s.set(next.clone())
	s.logger.Debug().Str("user", user.ID).Msg("session stored")
	return nil
}

// UpdateAccessToken replaces only the access token. It is refused when there is
// no session to update, since that would leave a partial session behind.
func (s *Store) UpdateAccessToken(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("[UpdateAccessToken] access token is required: %w", apperrors.ErrInvalidInput)
	}
	if s.RefreshToken() == "" {
		return fmt.Errorf("[UpdateAccessToken] %w", apperrors.ErrNoSession)
	}

	if err := s.storage.Set(ctx, AccessTokenKey, accessToken); err != nil {
		return apperrors.Wrapf(err, "[UpdateAccessToken] writing %q", AccessTokenKey)
	}

	s.mu.Lock()
	s.session.AccessToken = accessToken
	s.mu.Unlock()
	s.logger.Debug().Msg("access token replaced")
	return nil
}

// Clear removes the session from memory and storage. Memory is always emptied;
// storage failures are joined and returned.
func (s *Store) Clear(ctx context.Context) error {
	s.set(Session{})

	var errs []error
	for _, key := range Keys {
		if err := s.storage.Remove(ctx, key); err != nil {
			errs = append(errs, apperrors.Wrapf(err, "[Clear] removing %q", key))
		}
	}
	s.logger.Debug().Msg("session cleared")
	return errors.Join(errs...)
}

// Current returns a copy of the in-memory session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.clone()
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken
}

// User returns a copy of the profile, or nil when logged out.
func (s *Store) User() *users.User {
	return s.Current().User
}

func (s *Store) IsAuthenticated() bool {
	return s.Current().IsComplete()
}

// Token returns the bearer view of the current tokens, or nil when there is no
// access token.
func (s *Store) Token() *oauth2.Token {
	current := s.Current()
	if current.AccessToken == "" {
		return nil
	}
	return token.Bearer(current.AccessToken, current.RefreshToken)
}

// rollback restores the keys in written to what previous had persisted.
func (s *Store) rollback(ctx context.Context, previous Session, written []string) {
	var userJSON []byte
	if previous.IsComplete() {
		userJSON, _ = json.Marshal(previous.User)
	}
	old := map[string]string{
		AccessTokenKey:  previous.AccessToken,
		RefreshTokenKey: previous.RefreshToken,
		UserKey:         string(userJSON),
	}
	for _, key := range written {
		var err error
		if previous.IsComplete() {
			err = s.storage.Set(ctx, key, old[key])
		} else {
			err = s.storage.Remove(ctx, key)
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("session rollback failed")
		}
	}
}

func (s *Store) set(session Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}
