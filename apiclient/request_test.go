package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/agro-console/apiclient"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/sessions"
	"github.com/jrsteele09/agro-console/sessions/repofakes"
	"github.com/jrsteele09/agro-console/users"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// fakeAPI records every request it receives and answers with the handler
// registered for the path.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	handlers map[string]http.HandlerFunc
	server   *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{handlers: map[string]http.HandlerFunc{}}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.requests = append(api.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		h, ok := api.handlers[r.URL.Path]
		api.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) handle(path string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[path] = h
}

func (a *fakeAPI) requestsTo(path string) []recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []recordedRequest
	for _, r := range a.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newStore(t *testing.T, access, refresh string) (*sessions.Store, *repofakes.FakeStorage) {
	t.Helper()
	storage := repofakes.NewFakeStorage()
	store, err := sessions.NewStore(storage)
	require.NoError(t, err)
	if access != "" {
		require.NoError(t, store.SetSession(context.Background(), access, refresh, &users.User{ID: "user-1"}))
	}
	return store, storage
}

func newClient(t *testing.T, api *fakeAPI, store apiclient.SessionStore) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(api.server.URL+"/api", store, apiclient.WithHTTPClient(api.server.Client()))
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	store, _ := newStore(t, "", "")

	_, err := apiclient.New(" ", store)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = apiclient.New("http://localhost:4000/api", nil)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	c, err := apiclient.New("http://localhost:4000/api/", store)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:4000/api", c.BaseURL())
}

func TestRequest_GetWithoutToken(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/crops", respond(http.StatusOK, `[{"id":"1","name":"Soy"}]`))
	store, _ := newStore(t, "", "")

	raw, err := newClient(t, api, store).Request(context.Background(), "/crops", nil)
	require.NoError(t, err)
	require.Equal(t, `[{"id":"1","name":"Soy"}]`, string(raw))

	reqs := api.requestsTo("/api/crops")
	require.Len(t, reqs, 1)
	require.Equal(t, http.MethodGet, reqs[0].Method)
	require.Empty(t, reqs[0].Header.Get("Authorization"))
	require.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	require.NotEmpty(t, reqs[0].Header.Get("X-Request-Id"))
}

func TestRequest_PostWithToken(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/producer", respond(http.StatusCreated, `{"id":"p1","producerName":"Acme"}`))
	store, _ := newStore(t, "ABC", "R")

	body := `{"producerName":"Acme"}`
	_, err := newClient(t, api, store).Request(context.Background(), "/producer", &apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   []byte(body),
	})
	require.NoError(t, err)

	reqs := api.requestsTo("/api/producer")
	require.Len(t, reqs, 1)
	require.Equal(t, http.MethodPost, reqs[0].Method)
	require.Equal(t, "Bearer ABC", reqs[0].Header.Get("Authorization"))
	require.Equal(t, body, reqs[0].Body)
}

func TestRequest_CallerHeadersWin(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/crops", respond(http.StatusOK, `[]`))
	store, _ := newStore(t, "ABC", "R")

	_, err := newClient(t, api, store).Request(context.Background(), "/crops", &apiclient.RequestOptions{
		Headers: map[string]string{
			"Authorization": "Bearer OVERRIDE",
			"Content-Type":  "application/merge-patch+json",
		},
	})
	require.NoError(t, err)

	reqs := api.requestsTo("/api/crops")
	require.Equal(t, "Bearer OVERRIDE", reqs[0].Header.Get("Authorization"))
	require.Equal(t, "application/merge-patch+json", reqs[0].Header.Get("Content-Type"))
}

func TestRequest_RefreshesAndRetriesOnce(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/crops", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T2" {
			respond(http.StatusUnauthorized, `{"message":"Unauthorized"}`)(w, r)
			return
		}
		respond(http.StatusOK, `[{"id":"1","name":"Soy"}]`)(w, r)
	})
	api.handle("/api/auth/refresh-token", respond(http.StatusOK, `{"accessToken":"T2"}`))
	store, storage := newStore(t, "T1", "R")

	raw, err := newClient(t, api, store).Request(context.Background(), "/crops", nil)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"1","name":"Soy"}]`, string(raw))

	reqs := api.requestsTo("/api/crops")
	require.Len(t, reqs, 2)
	require.Equal(t, "Bearer T1", reqs[0].Header.Get("Authorization"))
	require.Equal(t, "Bearer T2", reqs[1].Header.Get("Authorization"))
	require.Equal(t, reqs[0].Header.Get("X-Request-Id"), reqs[1].Header.Get("X-Request-Id"))

	refresh := api.requestsTo("/api/auth/refresh-token")
	require.Len(t, refresh, 1)
	require.JSONEq(t, `{"refreshToken":"R"}`, refresh[0].Body)
	require.Empty(t, refresh[0].Header.Get("Authorization"))

	require.Equal(t, "T2", store.AccessToken())
	require.Equal(t, "T2", storage.Snapshot()[sessions.AccessTokenKey])
}

func TestRequest_RetryKeepsMethodBodyAndHeaders(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.handle("/api/crops/1", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			respond(http.StatusUnauthorized, `{"message":"Unauthorized"}`)(w, r)
			return
		}
		respond(http.StatusOK, `{"id":"1","name":"Corn"}`)(w, r)
	})
	api.handle("/api/auth/refresh-token", respond(http.StatusOK, `{"accessToken":"T2"}`))
	store, _ := newStore(t, "T1", "R")

	_, err := newClient(t, api, store).Request(context.Background(), "/crops/1", &apiclient.RequestOptions{
		Method:  http.MethodPut,
		Body:    []byte(`{"name":"Corn"}`),
		Headers: map[string]string{"X-Tenant": "farm-1"},
	})
	require.NoError(t, err)

	reqs := api.requestsTo("/api/crops/1")
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, `{"name":"Corn"}`, r.Body)
		require.Equal(t, "farm-1", r.Header.Get("X-Tenant"))
	}
}

func TestRequest_NeverRetriesTwice(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/crops", respond(http.StatusUnauthorized, `{"message":"Token revoked"}`))
	api.handle("/api/auth/refresh-token", respond(http.StatusOK, `{"accessToken":"T2"}`))
	store, _ := newStore(t, "T1", "R")

	_, err := newClient(t, api, store).Request(context.Background(), "/crops", nil)
	require.Error(t, err)
	require.True(t, apiclient.IsUnauthorized(err))
	require.Equal(t, "Token revoked", err.Error())

	require.Len(t, api.requestsTo("/api/crops"), 2)
	require.Len(t, api.requestsTo("/api/auth/refresh-token"), 1)
}

func TestRequest_RefreshFailureSurfacesOriginal401(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/crops", respond(http.StatusUnauthorized, `{"message":"Access token expired"}`))
	api.handle("/api/auth/refresh-token", respond(http.StatusForbidden, `{"message":"Refresh token invalid"}`))
	store, _ := newStore(t, "T1", "R")

	_, err := newClient(t, api, store).Request(context.Background(), "/crops", nil)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Access token expired", apiErr.Message)

	require.Len(t, api.requestsTo("/api/crops"), 1)
	require.Len(t, api.requestsTo("/api/auth/refresh-token"), 1)
	require.Equal(t, "T1", store.AccessToken())
}

func TestRequest_401WithoutRefreshToken(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/crops", respond(http.StatusUnauthorized, `{"message":"Unauthorized"}`))
	store, _ := newStore(t, "", "")

	_, err := newClient(t, api, store).Request(context.Background(), "/crops", nil)
	require.True(t, apiclient.IsUnauthorized(err))
	require.Len(t, api.requestsTo("/api/crops"), 1)
	require.Empty(t, api.requestsTo("/api/auth/refresh-token"))
}

func TestRequest_Failures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		message     string
		fieldErrors int
	}{
		{name: "message string", status: http.StatusNotFound, body: `{"message":"Crop not found"}`, message: "Crop not found"},
		{name: "message list", status: http.StatusBadRequest, body: `{"message":["name must be a string","name should not be empty"]}`, message: "name must be a string, name should not be empty", fieldErrors: 2},
		{name: "no message", status: http.StatusInternalServerError, body: `{"statusCode":500}`, message: apiclient.DefaultErrorMessage},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, message: apiclient.DefaultErrorMessage},
		{name: "empty body", status: http.StatusServiceUnavailable, body: ``, message: apiclient.DefaultErrorMessage},
		{name: "errors object", status: http.StatusNotFound, body: `{"message":"Producer not found","errors":{"id":"unknown"}}`, message: "Producer not found"},
		{name: "errors string", status: http.StatusNotFound, body: `{"message":"Producer not found","errors":"unknown id"}`, message: "Producer not found"},
		{name: "errors null", status: http.StatusNotFound, body: `{"message":"Producer not found","errors":null}`, message: "Producer not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.handle("/api/crops", respond(tt.status, tt.body))
			store, _ := newStore(t, "A", "R")

			_, err := newClient(t, api, store).Request(context.Background(), "/crops", nil)
			var apiErr *apiclient.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.Status)
			require.Equal(t, tt.message, apiErr.Message)
			require.Equal(t, tt.body, string(apiErr.Body))
			require.Len(t, apiErr.Errors, tt.fieldErrors)
			require.Len(t, api.requestsTo("/api/crops"), 1)
			require.Empty(t, api.requestsTo("/api/auth/refresh-token"))
		})
	}
}

func TestRequest_ValidationPayloadPreserved(t *testing.T) {
	body := `{"message":"Validation Error","errors":[` +
		`{"property":"cpfCnpj","constraints":{"isCpfOrCnpj":"cpfCnpj must be a valid CPF or CNPJ"}},` +
		`{"property":"address","children":[{"property":"state","constraints":{"length":"state must be 2 characters","isUppercase":"state must be uppercase"}}]},` +
		`"farmSize must not be smaller than usableArea + vegetationArea"]}`
	api := newFakeAPI(t)
	api.handle("/api/producer", respond(http.StatusBadRequest, body))
	store, _ := newStore(t, "A", "R")

	_, err := newClient(t, api, store).Request(context.Background(), "/producer", &apiclient.RequestOptions{Method: http.MethodPost})
	require.True(t, apiclient.IsValidation(err))
	require.False(t, apiclient.IsUnauthorized(err))

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Validation Error", apiErr.Message)
	require.Equal(t, body, string(apiErr.Body))
	require.Len(t, apiErr.Errors, 3)
	require.Equal(t, "cpfCnpj", apiErr.Errors[0].Property)
	require.Equal(t, "address.state", apiErr.Errors[1].Property)
	require.Equal(t, []string{"state must be uppercase", "state must be 2 characters"}, apiErr.Errors[1].Messages())
	require.Equal(t, []string{"farmSize must not be smaller than usableArea + vegetationArea"}, apiErr.Errors[2].Messages())
}

func TestIsValidation(t *testing.T) {
	require.False(t, apiclient.IsValidation(nil))
	require.False(t, apiclient.IsValidation(errors.New("boom")))
	require.False(t, apiclient.IsValidation(&apiclient.APIError{Status: http.StatusInternalServerError, Message: "Validation Error"}))
	require.True(t, apiclient.IsValidation(&apiclient.APIError{Status: http.StatusBadRequest, Message: "Validation Error"}))
	require.True(t, apiclient.IsValidation(&apiclient.APIError{
		Status: http.StatusUnprocessableEntity,
		Errors: []apiclient.FieldError{{Message: "name should not be empty"}},
	}))
}

func TestRequest_SuccessBodies(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		api := newFakeAPI(t)
		api.handle("/api/crops/1", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
		store, _ := newStore(t, "A", "R")

		raw, err := newClient(t, api, store).Request(context.Background(), "/crops/1", &apiclient.RequestOptions{Method: http.MethodDelete})
		require.NoError(t, err)
		require.Nil(t, raw)
	})

	t.Run("invalid json", func(t *testing.T) {
		api := newFakeAPI(t)
		api.handle("/api/crops", respond(http.StatusOK, `not json`))
		store, _ := newStore(t, "A", "R")

		_, err := newClient(t, api, store).Request(context.Background(), "/crops", nil)
		require.ErrorIs(t, err, apiclient.ErrBadPayload)
	})
}

func TestRequest_TransportFailure(t *testing.T) {
	api := newFakeAPI(t)
	store, _ := newStore(t, "A", "R")
	c := newClient(t, api, store)
	api.server.Close()

	_, err := c.Request(context.Background(), "/crops", nil)
	require.ErrorIs(t, err, apiclient.ErrTransport)

	var apiErr *apiclient.APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestWithTimeout(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/crops", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	store, _ := newStore(t, "A", "R")

	httpClient := api.server.Client()
	c, err := apiclient.New(api.server.URL+"/api", store,
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)
	require.Zero(t, httpClient.Timeout)

	_, err = c.Request(context.Background(), "/crops", nil)
	require.ErrorIs(t, err, apiclient.ErrTransport)
	require.Len(t, api.requestsTo("/api/crops"), 1)
}

func TestRequest_Cancelled(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/crops", respond(http.StatusOK, `[]`))
	store, _ := newStore(t, "A", "R")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(t, api, store).Request(ctx, "/crops", nil)
	require.ErrorIs(t, err, apiclient.ErrTransport)
	require.ErrorIs(t, err, context.Canceled)
}

type cropFixture struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCall(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/api/crops", respond(http.StatusOK, `[{"id":"1","name":"Soy"},{"id":"2","name":"Corn"}]`))
	api.handle("/api/crops/1", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	store, _ := newStore(t, "A", "R")
	c := newClient(t, api, store)

	crops, err := apiclient.Call[[]cropFixture](context.Background(), c, "/crops", nil)
	require.NoError(t, err)
	require.Equal(t, []cropFixture{{ID: "1", Name: "Soy"}, {ID: "2", Name: "Corn"}}, crops)

	none, err := apiclient.Call[*cropFixture](context.Background(), c, "/crops/1", &apiclient.RequestOptions{Method: http.MethodDelete})
	require.NoError(t, err)
	require.Nil(t, none)

	_, err = apiclient.Call[cropFixture](context.Background(), c, "/crops", nil)
	require.ErrorIs(t, err, apiclient.ErrBadPayload)
}

func TestJSONBody(t *testing.T) {
	body, err := apiclient.JSONBody(map[string]string{"name": "Soy"})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Soy"}`, string(body))

	_, err = apiclient.JSONBody(make(chan int))
	require.Error(t, err)
}
