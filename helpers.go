package portfolio

import (
	"net/url"
	"path"
	"strings"
)

// BuildURL joins a base URL with path segments. The result has no trailing
// slash unless base is a bare host.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return base
	}
	if len(pathSegments) > 0 {
		u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	}
	return u.String()
}
