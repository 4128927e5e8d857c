package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := TeeHandler(nil, inner); h != inner {
		t.Fatal("expected lone handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsPerHandlerLevel(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer
	debug := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	info := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(TeeHandler(debug, info))

	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee to accept debug when one handler does")
	}
	logger.Debug("probe cache miss")
	logger.Info("render complete")

	if !strings.Contains(debugBuf.String(), "probe cache miss") || !strings.Contains(debugBuf.String(), "render complete") {
		t.Fatalf("debug handler missed records: %s", debugBuf.String())
	}
	if strings.Contains(infoBuf.String(), "probe cache miss") {
		t.Fatalf("info handler received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "render complete") {
		t.Fatalf("info handler missed info record: %s", infoBuf.String())
	}
}

func TestTeeHandlerPropagatesAttrsAndGroups(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(TeeHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil)))
	logger.With("component", "render").WithGroup("plan").Info("built", "layers", 2)

	for _, out := range []string{a.String(), b.String()} {
		if !strings.Contains(out, `"component":"render"`) || !strings.Contains(out, `"plan":{"layers":2}`) {
			t.Fatalf("unexpected output %s", out)
		}
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestTeeHandlerJoinsSinkErrors(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewJSONHandler(&buf, nil)
	h := TeeHandler(failingHandler{Handler: slog.NewJSONHandler(&bytes.Buffer{}, nil)}, ok)

	var record slog.Record
	record.Level = slog.LevelInfo
	record.Message = "saved"
	err := h.Handle(context.Background(), record)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected joined sink error, got %v", err)
	}
	if !strings.Contains(buf.String(), "saved") {
		t.Fatalf("healthy sink should still receive the record, got %q", buf.String())
	}
}
