package config

import (
	"strings"
	"time"
)

const (
	apiURLVar      = "AGRO_API_URL"
	httpTimeoutVar = "AGRO_HTTP_TIMEOUT"

	DefaultAPIBaseURL = "http://localhost:4000/api"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the origin every API path is appended to, without a
// trailing slash.
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiURLVar, DefaultAPIBaseURL), "/")
}

func (API) GetHTTPTimeout() time.Duration {
	return GetDurationEnv(httpTimeoutVar, 30*time.Second)
}
