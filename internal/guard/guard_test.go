package guard

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/stanza/internal/log"
)

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Level: log.LevelDebug, Output: buf})
}

func TestRunSuccess(t *testing.T) {
	var buf bytes.Buffer
	ok := Run(testLogger(&buf), "tool.save", func() error {
		return nil
	})

	if !ok {
		t.Error("Run should report success")
	}
	if buf.Len() != 0 {
		t.Errorf("no log expected on success, got: %s", buf.String())
	}
}

func TestRunError(t *testing.T) {
	var buf bytes.Buffer
	ok := Run(testLogger(&buf), "tune.save", func() error {
		return errors.New("boom")
	})

	if ok {
		t.Error("Run should report failure")
	}
	if !strings.Contains(buf.String(), "tune.save failed: boom") {
		t.Errorf("expected scoped failure log, got: %s", buf.String())
	}
}

func TestRunRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	ok := Run(testLogger(&buf), "tool.rendered", func() error {
		panic("exploded")
	})

	if ok {
		t.Error("Run should report failure on panic")
	}
	if !strings.Contains(buf.String(), "panic: exploded") {
		t.Errorf("expected panic to be logged, got: %s", buf.String())
	}
}

func TestValueSuccess(t *testing.T) {
	var buf bytes.Buffer
	v, ok := Value(testLogger(&buf), "tool.save", func() (int, error) {
		return 42, nil
	})

	if !ok || v != 42 {
		t.Errorf("Value = (%d, %v), want (42, true)", v, ok)
	}
}

func TestValueErrorReturnsZero(t *testing.T) {
	var buf bytes.Buffer
	v, ok := Value(testLogger(&buf), "tool.save", func() (string, error) {
		return "partial", errors.New("nope")
	})

	if ok {
		t.Error("Value should report failure")
	}
	if v != "" {
		t.Errorf("Value should return zero value on failure, got %q", v)
	}
}

func TestValueRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	_, ok := Value(testLogger(&buf), "tune.wrap", func() (*struct{}, error) {
		panic("bad wrap")
	})

	if ok {
		t.Error("Value should report failure on panic")
	}
	if !strings.Contains(buf.String(), "tune.wrap failed") {
		t.Errorf("expected scoped failure log, got: %s", buf.String())
	}
}

func TestNilLoggerDoesNotPanic(t *testing.T) {
	ok := Run(nil, "hook", func() error { return errors.New("x") })
	if ok {
		t.Error("Run should report failure")
	}
}
