package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
)

// RequestOptions describes one call. The zero value is a GET with no body.
type RequestOptions struct {
	Method  string
	Body    []byte
	Headers map[string]string
}

type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// Request sends opts to path and returns the raw JSON of a successful
// response, or nil when the body is empty. A 401 is answered at most once: if
// a refresh token is held and the refresh endpoint yields a new access token,
// the token is stored and the identical call is sent again, and that second
// outcome is final. Failed responses come back as *APIError; network failures
// wrap ErrTransport.
func (c *Client) Request(ctx context.Context, path string, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	requestID := uuid.NewString()

	var resp *response
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var err error
		resp, err = c.send(ctx, method, path, requestID, opts)
		if err != nil {
			return nil, err
		}
		if resp.status != http.StatusUnauthorized || attempt == maxAttempts {
			break
		}

		refreshToken := c.session.RefreshToken()
		if refreshToken == "" {
			break
		}
		accessToken := c.Refresh(ctx, refreshToken)
		if accessToken == "" {
			break
		}
		if err := c.session.UpdateAccessToken(ctx, accessToken); err != nil {
			return nil, apperrors.Wrapf(err, "[Request] storing refreshed access token")
		}
		c.logger.Debug().Str("path", path).Str("request_id", requestID).Msg("access token refreshed, retrying")
	}

	if !resp.ok() {
		return nil, newAPIError(resp.status, resp.body)
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return nil, nil
	}
	if !json.Valid(resp.body) {
		return nil, fmt.Errorf("[Request] %s %s: %w", method, path, apperrors.ErrBadPayload)
	}
	return json.RawMessage(resp.body), nil
}

func (c *Client) send(ctx context.Context, method, path, requestID string, opts *RequestOptions) (*response, error) {
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("[Request] create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if tok := c.session.Token(); tok != nil {
		tok.SetAuthHeader(req)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[Request] %s %s: %w: %w", method, path, apperrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[Request] %s %s: read response: %w: %w", method, path, apperrors.ErrTransport, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("duration", time.Since(start)).
		Msg("api request")
	return &response{status: resp.StatusCode, body: data}, nil
}

// Call sends the request and decodes a successful response into T. An empty
// body leaves T at its zero value.
func Call[T any](ctx context.Context, r Requester, path string, opts *RequestOptions) (T, error) {
	var out T
	raw, err := r.Request(ctx, path, opts)
	if err != nil {
		return out, err
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("[Call] decoding %s: %w: %v", path, apperrors.ErrBadPayload, err)
	}
	return out, nil
}

// JSONBody encodes v for RequestOptions.Body.
func JSONBody(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[JSONBody] encoding request body")
	}
	return data, nil
}
