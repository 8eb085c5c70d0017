package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/jrsteele09/agro-console/apiclient"
	"github.com/jrsteele09/agro-console/auth"
	"github.com/jrsteele09/agro-console/crops"
	"github.com/jrsteele09/agro-console/internal/config"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/producercrops"
	"github.com/jrsteele09/agro-console/producers"
	"github.com/jrsteele09/agro-console/querycache"
	"github.com/jrsteele09/agro-console/sessions"
	"github.com/jrsteele09/agro-console/statistics"
	"github.com/rs/zerolog"
)

// App wires the client core together for one console invocation. Nothing is
// opened until a command runs, so flags can still change the API URL and the
// output format.
type App struct {
	cfg        config.Config
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	storage    sessions.Storage
	httpClient *http.Client
	logger     zerolog.Logger
	closers    []func() error

	apiURL   string
	output   string
	logLevel string

	store         *sessions.Store
	client        *apiclient.Client
	cache         *querycache.Cache
	auth          *auth.Service
	crops         *crops.Service
	producers     *producers.Service
	producerCrops *producercrops.Service
	statistics    *statistics.Service
}

// Option defines a function type to modify the App instance.
type Option func(*App)

// WithStorage replaces the configured session backend.
func WithStorage(storage sessions.Storage) Option {
	return func(a *App) {
		a.storage = storage
	}
}

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(a *App) {
		a.httpClient = httpClient
	}
}

// WithIO sets where prompts are read from and where results and logs go.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in = in
		a.out = out
		a.errOut = errOut
	}
}

func New(cfg config.Config, options ...Option) *App {
	a := &App{
		cfg:      cfg,
		in:       os.Stdin,
		out:      os.Stdout,
		errOut:   os.Stderr,
		apiURL:   cfg.GetAPIBaseURL(),
		output:   FormatTable,
		logLevel: cfg.GetLogLevel(),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// init builds the session store, request client and services. It is safe to
// call more than once.
func (a *App) init(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	a.logger = NewLogger(a.errOut, a.logLevel)

	if a.storage == nil {
		storage, closer, err := OpenStorage(ctx, a.cfg, a.logger)
		if err != nil {
			return err
		}
		a.storage = storage
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	store, err := sessions.NewStore(a.storage, sessions.WithLogger(a.logger))
	if err != nil {
		return err
	}

	clientOptions := []apiclient.ClientOption{apiclient.WithLogger(a.logger)}
	if a.httpClient != nil {
		clientOptions = append(clientOptions, apiclient.WithHTTPClient(a.httpClient))
	} else {
		clientOptions = append(clientOptions, apiclient.WithTimeout(a.cfg.GetHTTPTimeout()))
	}
	client, err := apiclient.New(a.apiURL, store, clientOptions...)
	if err != nil {
		return err
	}

	cache := querycache.New(a.cfg.GetCacheTTL())
	authService, err := auth.NewService(client, store, auth.WithCache(cache), auth.WithLogger(a.logger))
	if err != nil {
		return err
	}

	a.store = store
	a.client = client
	a.cache = cache
	a.auth = authService
	a.crops = crops.NewService(client, crops.WithCache(cache))
	a.producers = producers.NewService(client, producers.WithCache(cache))
	a.producerCrops = producercrops.NewService(client, producercrops.WithCache(cache))
	a.statistics = statistics.NewService(client, statistics.WithCache(cache))

	if _, err := a.auth.Restore(ctx); err != nil {
		if !apperrors.Is(err, apperrors.ErrCorruptSession) {
			return err
		}
		a.logger.Warn().Err(err).Msg("discarding stored session")
		if clearErr := a.store.Clear(ctx); clearErr != nil {
			return fmt.Errorf("[init] clearing corrupt session: %w", clearErr)
		}
	}
	return nil
}

// requireSession fails unless a complete session was restored.
func (a *App) requireSession() error {
	if !a.store.IsAuthenticated() {
		return fmt.Errorf("%w: run `agroctl login` first", auth.ErrNoSession)
	}
	return nil
}

// checkSession turns an unrecoverable 401 into ErrSessionExpired and forgets
// the session.
func (a *App) checkSession(ctx context.Context, err error) error {
	return a.auth.RequireSession(ctx, err)
}

// Close releases backends opened by init.
func (a *App) Close() error {
	var errs []error
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
