package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCapture            = errors.New("capture failure")
	ErrRead               = errors.New("read failure")
	ErrTransport          = errors.New("transport failure")
	ErrPublishRejected    = errors.New("publish rejected")
	ErrIncompleteManifest = errors.New("incomplete manifest")
	ErrValidation         = errors.New("validation error")
	ErrConfiguration      = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrCapture
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category names the failure class of err for structured logs. Callers never
// see the category; it exists so operators can tell which stage failed.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrCapture):
		return "capture"
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrPublishRejected):
		return "publish_rejected"
	case errors.Is(err, ErrIncompleteManifest):
		return "manifest"
	default:
		return "unexpected"
	}
}

// IsClientError reports whether err was caused by caller input rather than by
// the pipeline or its collaborators.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
