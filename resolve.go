package portfolio

import (
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"
)

// Mode is the runtime mode of the site.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode accepts development/dev and production/prod. Empty means production.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "production", "prod":
		return ModeProduction, nil
	case "development", "dev":
		return ModeDevelopment, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// UnmarshalText lets env parsing go through ParseMode.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// BackendVars are the two environment variables naming the backend.
type BackendVars struct {
	Primary  string // BACKEND_URL
	Fallback string // API_URL
}

// ResolveBackendURL picks the backend base URL: Primary if set, else Fallback,
// else nothing. Values are trimmed and lose any trailing slash. There is no
// built-in default in any mode, so a missing variable stays visible.
func ResolveBackendURL(vars BackendVars) (string, bool) {
	for _, v := range []string{vars.Primary, vars.Fallback} {
		if u := normalizeBaseURL(v); u != "" {
			return u, true
		}
	}
	return "", false
}

func normalizeBaseURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

// unsetBackendLevel is how loudly a missing backend URL is reported.
func unsetBackendLevel(m Mode) log.Lvl {
	if m == ModeDevelopment {
		return log.WARN
	}
	return log.ERROR
}

func parseLogLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
