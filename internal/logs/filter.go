package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"permasnap/internal/logging"
)

// Filter selects JSON log lines. The zero value matches everything.
type Filter struct {
	RequestID string
	// Level is the minimum level name (debug, info, warn, error).
	Level string
}

// Empty reports whether the filter matches every line.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.RequestID) == "" && strings.TrimSpace(f.Level) == ""
}

// Validate rejects unknown level names.
func (f Filter) Validate() error {
	if strings.TrimSpace(f.Level) == "" {
		return nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(f.Level))); err != nil {
		return fmt.Errorf("unknown log level %q", f.Level)
	}
	return nil
}

// Match reports whether line passes the filter. Lines that are not JSON
// only pass an empty filter.
func (f Filter) Match(line string) bool {
	if f.Empty() {
		return true
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	if id := strings.TrimSpace(f.RequestID); id != "" {
		value, _ := record[logging.FieldRequestID].(string)
		if value != id {
			return false
		}
	}
	minText := strings.TrimSpace(f.Level)
	if minText == "" {
		return true
	}
	var minLevel, level slog.Level
	if err := minLevel.UnmarshalText([]byte(minText)); err != nil {
		return false
	}
	levelText, _ := record[slog.LevelKey].(string)
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		level = slog.LevelInfo
	}
	return level >= minLevel
}

// Apply returns the lines that pass the filter.
func (f Filter) Apply(lines []string) []string {
	if f.Empty() {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if f.Match(line) {
			out = append(out, line)
		}
	}
	return out
}
