package users

import (
	"fmt"
	"net/mail"
	"strings"
)

// User is the profile of the authenticated principal as returned by the API
// alongside a login. It is persisted JSON-encoded under the "user" storage key.
type User struct {
	ID    string `json:"id"`              // Unique identifier for the user
	Name  string `json:"name,omitempty"`  // Display name
	Email string `json:"email,omitempty"` // User's email address
}

// DisplayName prefers the name and falls back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate only checks the credentials are usable; the API decides whether
// they are correct.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Registration is the body of POST /user.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("email %q is not a valid address", r.Email)
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Credentials returns the login body for the registered account.
func (r Registration) Credentials() Credentials {
	return Credentials{Email: r.Email, Password: r.Password}
}
