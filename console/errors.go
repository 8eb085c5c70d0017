package console

import (
	"strings"

	"github.com/jrsteele09/agro-console/apiclient"
	apperrors "github.com/jrsteele09/agro-console/internal/errors"
)

// FormatError renders err for the terminal. Validation failures list each
// field violation on its own line.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case apperrors.Is(err, apperrors.ErrSessionExpired):
		return errorStyle.Render("Session expired.") + " Run `agroctl login` again."
	case apperrors.Is(err, apperrors.ErrNoSession):
		return errorStyle.Render("Not logged in.") + " Run `agroctl login` first."
	case apperrors.Is(err, apperrors.ErrTransport):
		return errorStyle.Render("Cannot reach the API: ") + err.Error()
	}

	var apiErr *apiclient.APIError
	if !apperrors.As(err, &apiErr) {
		return errorStyle.Render("Error: ") + err.Error()
	}

	var b strings.Builder
	b.WriteString(errorStyle.Render(apiErr.Message))
	if apiclient.IsValidation(err) {
		for _, fe := range apiErr.Errors {
			for _, msg := range fe.Messages() {
				b.WriteString("\n  - ")
				if fe.Property != "" && !strings.Contains(msg, fe.Property) {
					b.WriteString(fe.Property + ": ")
				}
				b.WriteString(msg)
			}
		}
	}
	return b.String()
}
