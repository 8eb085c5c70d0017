package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	apperrors "github.com/jrsteele09/agro-console/internal/errors"
	"github.com/jrsteele09/agro-console/internal/utils"
)

const (
	// DefaultErrorMessage is used when a failed response carries no message.
	DefaultErrorMessage = "Something went wrong"

	validationMessage = "Validation Error"
)

var (
	ErrTransport  = apperrors.ErrTransport
	ErrBadPayload = apperrors.ErrBadPayload
)

// FieldError is one entry of a validation payload. Entries the API sends as
// plain strings only carry Message.
type FieldError struct {
	Property    string            `json:"property,omitempty"`
	Constraints map[string]string `json:"constraints,omitempty"`
	Message     string            `json:"message,omitempty"`
}

// Messages returns the human readable violations of the field, ordered by
// constraint name.
func (f FieldError) Messages() []string {
	if len(f.Constraints) == 0 {
		if f.Message == "" {
			return nil
		}
		return []string{f.Message}
	}
	names := make([]string, 0, len(f.Constraints))
	for name := range f.Constraints {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, f.Constraints[name])
	}
	return msgs
}

// APIError is a non-2xx response. Body holds the payload exactly as received
// so callers can inspect shapes this package does not model.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
	Body    []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 that survived the refresh path.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsValidation reports whether err carries field level violations.
func IsValidation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status != http.StatusBadRequest && apiErr.Status != http.StatusUnprocessableEntity {
		return false
	}
	return apiErr.Message == validationMessage || len(apiErr.Errors) > 0
}

type errorPayload struct {
	Message json.RawMessage `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

type rawFieldError struct {
	Property    string            `json:"property"`
	Constraints map[string]string `json:"constraints"`
	Children    []rawFieldError   `json:"children"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status:  status,
		Message: DefaultErrorMessage,
		Body:    body,
	}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	var msg any
	if len(payload.Message) > 0 && json.Unmarshal(payload.Message, &msg) == nil {
		switch m := msg.(type) {
		case string:
			if m != "" {
				apiErr.Message = m
			}
		case []any:
			msgs := utils.ToStringSlice(m)
			if len(msgs) > 0 {
				apiErr.Message = strings.Join(msgs, ", ")
			}
			for _, s := range msgs {
				apiErr.Errors = append(apiErr.Errors, FieldError{Message: s})
			}
		}
	}

	// Only a list of errors is modelled; any other shape stays in Body.
	var items []json.RawMessage
	if json.Unmarshal(payload.Errors, &items) == nil {
		for _, item := range items {
			apiErr.Errors = append(apiErr.Errors, parseFieldError(item)...)
		}
	}
	return apiErr
}

func parseFieldError(item json.RawMessage) []FieldError {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		if s == "" {
			return nil
		}
		return []FieldError{{Message: s}}
	}

	var raw rawFieldError
	if err := json.Unmarshal(item, &raw); err != nil {
		return nil
	}
	return flattenFieldError("", raw)
}

// flattenFieldError walks nested children, joining property names with dots.
func flattenFieldError(parent string, raw rawFieldError) []FieldError {
	property := raw.Property
	if parent != "" {
		property = fmt.Sprintf("%s.%s", parent, raw.Property)
	}

	var out []FieldError
	if len(raw.Constraints) > 0 {
		out = append(out, FieldError{Property: property, Constraints: raw.Constraints})
	}
	for _, child := range raw.Children {
		out = append(out, flattenFieldError(property, child)...)
	}
	return out
}
