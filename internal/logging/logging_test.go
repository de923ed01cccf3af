package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesLogfmtToBuffer(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Prefix: "test", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Debug("refreshed", "documents", 3)

	got := buf.String()
	if !strings.Contains(got, "msg=refreshed") || !strings.Contains(got, "documents=3") {
		t.Errorf("output %q is not logfmt", got)
	}
	if !strings.Contains(got, "prefix=test") {
		t.Errorf("output %q is missing the prefix", got)
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestNewFile(t *testing.T) {
	path := FilePath(filepath.Join(t.TempDir(), "cache"))
	logger, err := New(Options{File: path})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("saved", "title", "Plan")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "title=Plan") {
		t.Errorf("log file = %q, want the saved record", data)
	}
}
