package history

import (
	"errors"
	"strings"
	"time"
)

// Entry is one published archive.
type Entry struct {
	ID           int64
	RequestID    string
	SourceURL    string
	Title        string
	ContentID    string
	PageID       string
	ScreenshotID string
	Archiver     string
	CapturedAt   int64
	CreatedAt    time.Time
}

// CapturedTime returns CapturedAt as a time value.
func (e Entry) CapturedTime() time.Time {
	return time.Unix(e.CapturedAt, 0)
}

func (e Entry) validate() error {
	switch {
	case strings.TrimSpace(e.ContentID) == "":
		return errors.New("history: content id required")
	case strings.TrimSpace(e.SourceURL) == "":
		return errors.New("history: source url required")
	case strings.TrimSpace(e.PageID) == "" || strings.TrimSpace(e.ScreenshotID) == "":
		return errors.New("history: artifact ids required")
	}
	return nil
}
