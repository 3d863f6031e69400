package strips

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLoggerRoutesOutput(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	Logger().Info("frame encoded", "strips", 3)
	if !strings.Contains(buf.String(), "frame encoded") {
		t.Errorf("log output = %q, want it to contain the message", buf.String())
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	SetLogger(nil)

	Logger().Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("log output after SetLogger(nil) = %q, want none", buf.String())
	}
	if Logger() == nil {
		t.Fatal("Logger() = nil, want nop logger")
	}
}
