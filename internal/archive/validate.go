package archive

import (
	"net/url"
	"strings"

	"permasnap/internal/services"
)

// ValidateURL checks that raw is an absolute http or https URL with a host
// and returns it trimmed.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "validate", "parse url", "url is required", nil)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "validate", "parse url", "invalid url", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", services.Wrap(services.ErrValidation, "validate", "parse url",
			"url must use http or https", nil)
	}
	if parsed.Hostname() == "" {
		return "", services.Wrap(services.ErrValidation, "validate", "parse url", "url must include a host", nil)
	}
	return trimmed, nil
}
