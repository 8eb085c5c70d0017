package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds a single HTTP exchange when no client is supplied.
	DefaultTimeout = 30 * time.Second

	// RefreshPath is the unauthenticated endpoint that trades a refresh token
	// for a new access token.
	RefreshPath = "/auth/refresh-token"

	maxAttempts = 2
)

// SessionStore is the part of the session store the client reads tokens from
// and writes refreshed access tokens back to.
type SessionStore interface {
	RefreshToken() string
	Token() *oauth2.Token
	UpdateAccessToken(ctx context.Context, accessToken string) error
}

// Requester issues authenticated JSON requests. Resource services depend on
// it rather than on *Client so they can be tested against fakes.
type Requester interface {
	Request(ctx context.Context, path string, opts *RequestOptions) (json.RawMessage, error)
}

// Client is the single gateway for authenticated calls to the agro API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	session    SessionStore
	logger     zerolog.Logger
}

var _ Requester = (*Client)(nil)

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-exchange timeout. A client passed to
// WithHTTPClient is copied, never modified.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for baseURL (e.g. http://localhost:4000/api) that
// authenticates with the tokens held by session.
func New(baseURL string, session SessionStore, options ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("[New] base url is required: %w", apperrors.ErrInvalidInput)
	}
	if session == nil {
		return nil, fmt.Errorf("[New] session store is required: %w", apperrors.ErrInvalidInput)
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   DefaultTimeout,
		},
		session: session,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.timeout > 0 {
		httpClient := *c.httpClient
		httpClient.Timeout = c.timeout
		c.httpClient = &httpClient
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}
