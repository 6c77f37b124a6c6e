package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewFanoutHandlerNilHandlers(t *testing.T) {
	h := newFanoutHandler(nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", h)
	}
}

func TestNewFanoutHandlerFiltersNil(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)

	h := newFanoutHandler(nil, inner, nil)
	if h != inner {
		t.Error("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsPerHandlerLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoHandler := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h := newFanoutHandler(infoHandler, debugHandler)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout to be enabled when any handler accepts the level")
	}

	logger := slog.New(h).With("component", "test")
	logger.Debug("debug only")
	logger.Info("both")

	if strings.Contains(infoBuf.String(), "debug only") {
		t.Fatal("info handler must not receive debug records")
	}
	if !strings.Contains(debugBuf.String(), "debug only") {
		t.Fatal("debug handler missed debug record")
	}
	for _, out := range []string{infoBuf.String(), debugBuf.String()} {
		if !strings.Contains(out, "both") || !strings.Contains(out, `"component":"test"`) {
			t.Fatalf("expected shared record with attrs, got %q", out)
		}
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestFanoutHandlerKeepsWritingAfterBranchError(t *testing.T) {
	var buf bytes.Buffer
	good := slog.NewJSONHandler(&buf, nil)
	bad := failingHandler{Handler: slog.NewJSONHandler(&bytes.Buffer{}, nil)}

	h := newFanoutHandler(bad, good)
	record := slog.NewRecord(time.Now(), slog.LevelInfo, "archive published", 0)
	err := h.Handle(context.Background(), record)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected branch error, got %v", err)
	}
	if !strings.Contains(buf.String(), "archive published") {
		t.Fatal("healthy branch should still receive the record")
	}
}
