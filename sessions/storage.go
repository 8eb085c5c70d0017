package sessions

import "context"

// Storage keys owned by the Store. No other component writes them.
const (
	AccessTokenKey  = "token"
	RefreshTokenKey = "refreshToken"
	UserKey         = "user"
)

// Keys lists every storage key the Store manages, in write order.
var Keys = []string{AccessTokenKey, RefreshTokenKey, UserKey}

// Storage is a durable string key/value facility. Implementations must treat a
// missing key as ("", false, nil), not as an error.
type Storage interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error
	Remove(ctx context.Context, key string) error
}
