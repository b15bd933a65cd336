package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSlugify(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Road Trip", want: "road-trip"},
		{name: "punctuation runs", in: "  Mix!! -- Vol. 2  ", want: "mix-vol-2"},
		{name: "already slug", in: "gym", want: "gym"},
		{name: "trailing symbols", in: "Chill ~~~", want: "chill"},
		{name: "non-ascii dropped", in: "Café Nights", want: "caf-nights"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIDs(t *testing.T) {
	t.Run("GenerateID is unique and valid", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b {
			t.Errorf("expected distinct ids, got %s twice", a)
		}
		if !IsValidID(a) || !IsValidID(b) {
			t.Errorf("generated ids should be valid: %s %s", a, b)
		}
	})

	t.Run("IsValidID rejects garbage", func(t *testing.T) {
		if IsValidID("not-a-uuid") {
			t.Error("expected not-a-uuid to be invalid")
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]any{"name": "Road Trip"}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(compact) != `{"name":"Road Trip"}` {
		t.Errorf("unexpected compact output: %s", compact)
	}

	pretty, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  \"name\"") {
		t.Errorf("expected indented output, got %s", pretty)
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "playlist", "Road Trip")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "Road Trip") {
			t.Errorf("expected message and key-value in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tracklist.log")
		logger, err := NewFileLogger(path, LoggingConfig{MaxSizeMB: 1})
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("written to file")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected log file to exist: %v", err)
		}
		if !strings.Contains(string(data), "written to file") {
			t.Errorf("expected log line in file, got %q", data)
		}
	})

	t.Run("NewFileLogger Empty Path", func(t *testing.T) {
		if _, err := NewFileLogger("", LoggingConfig{}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoggerFromConfig Level", func(t *testing.T) {
		logger, err := LoggerFromConfig(LoggingConfig{Level: "debug"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}
	})

	t.Run("LoggerFromConfig Invalid Level", func(t *testing.T) {
		if _, err := LoggerFromConfig(LoggingConfig{Level: "loud"}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
