package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"permasnap/internal/logging"
)

// DirPrefix marks directories created by Allocate. Housekeeping only touches
// entries carrying this prefix.
const DirPrefix = "capture-"

// Allocate creates a fresh, uniquely named scratch directory under root.
func Allocate(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", errors.New("scratch root is not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create scratch root: %w", err)
	}
	dir := filepath.Join(root, DirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	return dir, nil
}

// Release removes a scratch directory and everything inside it. Removing a
// directory that is already gone is not an error.
func Release(dir string, logger *slog.Logger) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		logging.WarnWithContext(logger, "failed to remove scratch directory", "scratch_cleanup_failed",
			logging.String("path", dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'permasnap staging clean' or check scratch_dir permissions"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
		return fmt.Errorf("remove scratch directory: %w", err)
	}
	return nil
}

// Owned reports whether name looks like a directory created by Allocate.
func Owned(name string) bool {
	return strings.HasPrefix(name, DirPrefix)
}
