package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Refresh trades refreshToken for a new access token. It never returns an
// error: any failure is logged and reported as an empty token, leaving the
// caller to decide what a missing token means. The call carries no
// Authorization header and is never retried.
func (c *Client) Refresh(ctx context.Context, refreshToken string) string {
	if refreshToken == "" {
		c.logger.Warn().Msg("Failed to refresh access token: no refresh token")
		return ""
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to refresh access token")
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshPath, bytes.NewReader(payload))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to refresh access token")
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to refresh access token")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("Failed to refresh access token")
		return ""
	}

	var out refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to refresh access token: malformed response")
		return ""
	}
	if out.AccessToken == "" {
		c.logger.Warn().Msg("Failed to refresh access token: response has no accessToken")
	}
	return out.AccessToken
}
