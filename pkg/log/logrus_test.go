package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestSimpleFormatter(t *testing.T) {
	f := &SimpleFormatter{}
	entry := &logrus.Entry{
		Time:    time.Date(2025, 4, 6, 17, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "watchdog expired",
		Data:    logrus.Fields{"component": "motion", "elapsed": "1s"},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	want := "2025/04/06 17:30:00.000000 [WAR] watchdog expired component=motion elapsed=1s\n"
	if string(out) != want {
		t.Errorf("Expected %q, got %q", want, string(out))
	}
}

func TestWriterLoggerLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("info", &buf)

	logger.Debugf("hidden %d", 1)
	logger.WithField("component", "sound").Infof("listening on %s", ":9100")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug entry should be filtered at info level, got: %s", out)
	}
	if !strings.Contains(out, "[INF] listening on :9100 component=sound") {
		t.Errorf("Expected info entry with field, got: %s", out)
	}
}

func TestWriterLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("loud", &buf)

	logger.Debugf("debug line")
	logger.Infof("info line")

	if strings.Contains(buf.String(), "debug line") {
		t.Errorf("Unknown level should fall back to info")
	}
	if !strings.Contains(buf.String(), "info line") {
		t.Errorf("Expected info line in output")
	}
}

func TestNewLogrusLoggerCreatesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := NewLogrusLogger("debug", dir)
	if err != nil {
		t.Fatalf("NewLogrusLogger failed: %v", err)
	}
	logger.Infof("hello file")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("Expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Errorf("Expected log file to contain entry, got: %s", string(data))
	}
}
