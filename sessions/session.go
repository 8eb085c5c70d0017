package sessions

import "github.com/jrsteele09/agro-console/users"

// Session is the authentication state of the console user. The three fields are
// populated together by a login and cleared together by a logout; a refresh
// only ever replaces AccessToken.
type Session struct {
	AccessToken  string      `json:"accessToken"`  // Short-lived bearer credential
	RefreshToken string      `json:"refreshToken"` // Exchanged for new access tokens
	User         *users.User `json:"user"`         // Authenticated principal
}

// IsComplete reports whether every field is present.
func (s Session) IsComplete() bool {
	return s.AccessToken != "" && s.RefreshToken != "" && s.User != nil
}

// IsEmpty reports whether no field is present.
func (s Session) IsEmpty() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.User == nil
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
