package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/agro-console/apiclient"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/querycache"
	"github.com/jrsteele09/agro-console/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	LoginPath    = "/auth/login"
	RegisterPath = "/user"
)

// Client is what the service needs from the request client: authenticated
// requests plus the primitive refresh call.
type Client interface {
	apiclient.Requester
	Refresh(ctx context.Context, refreshToken string) string
}

// SessionStore is the session state the service drives.
type SessionStore interface {
	Restore(ctx context.Context) (bool, error)
	SetSession(ctx context.Context, accessToken, refreshToken string, user *users.User) error
	UpdateAccessToken(ctx context.Context, accessToken string) error
	Clear(ctx context.Context) error
	RefreshToken() string
	User() *users.User
}

// LoginResponse is the body the API answers a successful login with.
type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *users.User `json:"user"`
}

func (r *LoginResponse) complete() bool {
	return r != nil && r.AccessToken != "" && r.RefreshToken != "" && r.User != nil
}

// Service holds the credential operations of the console: it turns API
// responses into session state and clears that state again.
type Service struct {
	client Client
	store  SessionStore
	cache  *querycache.Cache
	logger zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithCache makes login and logout drop cached queries of the previous user.
func WithCache(cache *querycache.Cache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(client Client, store SessionStore, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] session store is required")
	}

	s := &Service{
		client: client,
		store:  store,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Restore loads the session persisted by an earlier run. False means the
// caller should ask the user to log in.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	ok, err := s.store.Restore(ctx)
	if err != nil {
		return false, errors.Wrap(err, "[Restore] failed to restore session")
	}
	return ok, nil
}

// Login exchanges credentials for a session. The store is only touched once
// the API has answered with a complete session.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, error) {
	creds := users.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("[Login] %w: %v", apperrors.ErrInvalidInput, err)
	}

	body, err := apiclient.JSONBody(creds)
	if err != nil {
		return nil, errors.Wrap(err, "[Login]")
	}

	resp, err := apiclient.Call[*LoginResponse](ctx, s.client, LoginPath, &apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Login] login request failed")
	}
	if !resp.complete() {
		return nil, errors.Wrap(apperrors.ErrIncompleteLogin, "[Login]")
	}

	if err := s.store.SetSession(ctx, resp.AccessToken, resp.RefreshToken, resp.User); err != nil {
		return nil, errors.Wrap(err, "[Login] failed to store session")
	}
	s.cache.Clear()

	s.logger.Info().Str("user", resp.User.ID).Msg("logged in")
	return resp.User, nil
}

// Register creates an account and logs straight into it.
func (s *Service) Register(ctx context.Context, email, password, name string) (*users.User, error) {
	registration := users.Registration{Email: email, Password: password, Name: name}
	if err := registration.Validate(); err != nil {
		return nil, fmt.Errorf("[Register] %w: %v", apperrors.ErrInvalidInput, err)
	}

	body, err := apiclient.JSONBody(registration)
	if err != nil {
		return nil, errors.Wrap(err, "[Register]")
	}

	if _, err := s.client.Request(ctx, RegisterPath, &apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	}); err != nil {
		return nil, errors.Wrap(err, "[Register] registration failed")
	}

	user, err := s.Login(ctx, email, password)
	if err != nil {
		return nil, errors.Wrap(err, "[Register] login after registration failed")
	}
	return user, nil
}

// Logout forgets the session. Memory and cache are always cleared even when
// storage reports an error.
func (s *Service) Logout(ctx context.Context) error {
	s.cache.Clear()
	if err := s.store.Clear(ctx); err != nil {
		return errors.Wrap(err, "[Logout] failed to clear stored session")
	}
	s.logger.Info().Msg("logged out")
	return nil
}

// RefreshAccessToken asks for a new access token on demand. It reports false
// without touching the session when the API does not issue one.
func (s *Service) RefreshAccessToken(ctx context.Context) (bool, error) {
	refreshToken := s.store.RefreshToken()
	if refreshToken == "" {
		return false, errors.WithStack(apperrors.ErrNoRefreshToken)
	}

	accessToken := s.client.Refresh(ctx, refreshToken)
	if accessToken == "" {
		return false, nil
	}
	if err := s.store.UpdateAccessToken(ctx, accessToken); err != nil {
		return false, errors.Wrap(err, "[RefreshAccessToken] failed to store access token")
	}
	return true, nil
}

// RequireSession inspects the error of an authenticated call. A 401 that the
// request client could not recover means the session is dead: it is cleared
// and ErrSessionExpired returned so the caller can send the user to login.
// Other errors are returned unchanged.
func (s *Service) RequireSession(ctx context.Context, err error) error {
	if err == nil || !apiclient.IsUnauthorized(err) {
		return err
	}

	if clearErr := s.Logout(ctx); clearErr != nil {
		s.logger.Warn().Err(clearErr).Msg("failed to clear expired session")
	}
	return fmt.Errorf("%w: %w", apperrors.ErrSessionExpired, err)
}

// CurrentUser returns the logged in user, or ErrNoSession.
func (s *Service) CurrentUser() (*users.User, error) {
	user := s.store.User()
	if user == nil {
		return nil, errors.WithStack(apperrors.ErrNoSession)
	}
	return user, nil
}
