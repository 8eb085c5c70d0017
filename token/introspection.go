package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Introspection is what the console can learn from an access token without the
// API's signing key. None of it is trusted; it is only used to display the
// session and to predict expiry.
type Introspection struct {
	Sub    string    // Subject (user id)
	Email  string    // Email claim, when the API includes one
	Iat    time.Time // Issued at, zero when absent
	Exp    time.Time // Expiry, zero when absent
	Active bool      // False once Exp has passed
}

// Inspect parses rawToken as a JWT without verifying its signature. Tokens that
// are not JWTs return an error; the session itself stays usable because the API
// treats the token as opaque.
func Inspect(rawToken string) (*Introspection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("empty token")
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)

	i := &Introspection{Sub: sub, Email: email, Active: true}
	if iat, ok := claims["iat"].(float64); ok {
		i.Iat = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		i.Exp = time.Unix(int64(exp), 0)
		i.Active = NowTimeFunc().Before(i.Exp)
	}
	return i, nil
}

// Bearer builds the oauth2 view of a session's tokens. Expiry is taken from
// the access token's exp claim when it is a JWT and left zero (never expires)
// otherwise.
func Bearer(accessToken, refreshToken string) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if i, err := Inspect(accessToken); err == nil {
		t.Expiry = i.Exp
	}
	return t
}
