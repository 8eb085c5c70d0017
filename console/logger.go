package console

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a human readable logger for the console. Unknown levels
// fall back to info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		FormatPrepare: func(evt map[string]interface{}) error {
			if method, ok := evt["method"].(string); ok {
				evt["method"] = methodLabel(method)
			}
			return nil
		},
	}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}

// methodLabel pads an HTTP method and colours it the way route listings do.
func methodLabel(method string) string {
	padded := fmt.Sprintf("%-7s", method)
	if style, ok := methodStyles[method]; ok {
		return style.Render(padded)
	}
	return mutedStyle.Render(padded)
}
