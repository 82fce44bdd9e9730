package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warn", WARN},
		{"Warning", WARN},
		{"ERROR", ERROR},
		{" error ", ERROR},
		{"", INFO},
		{"verbose", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(WARN, &buf)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN should be filtered, got: %s", out)
	}
	if !strings.Contains(out, "WARN: warn message") {
		t.Errorf("expected warn line, got: %s", out)
	}
	if !strings.Contains(out, "ERROR: error message") {
		t.Errorf("expected error line, got: %s", out)
	}
}

func TestNamedLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewWithWriter(INFO, &buf)
	child := root.Named("referral").Named("notify")

	child.Info("sent", "user_id", 42)
	if !strings.Contains(buf.String(), "component=referral.notify") {
		t.Errorf("expected component tag, got: %s", buf.String())
	}

	buf.Reset()
	root.SetLevel(ERROR)
	child.Warn("suppressed")
	if buf.Len() != 0 {
		t.Errorf("child should follow parent level, got: %s", buf.String())
	}
}

func TestOddFieldIsKept(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(DEBUG, &buf)

	log.Info("odd", "key", "value", "dangling")
	if !strings.Contains(buf.String(), "key=value") || !strings.Contains(buf.String(), "EXTRA=dangling") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestFieldsRendered(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("every key/value pair appears in the line", prop.ForAll(
		func(key string, value int64) bool {
			var buf bytes.Buffer
			log := NewWithWriter(DEBUG, &buf)
			log.Debug("msg", key, value)
			return strings.Contains(buf.String(), key+"=")
		},
		gen.Identifier(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
