package obslog

import "testing"

func TestNewDefaultLevel(t *testing.T) {
	l := New(Config{Level: "bogus"})
	if l.Level.String() != "info" {
		t.Errorf("expected fallback to info level, got %s", l.Level.String())
	}
}

func TestNewJSONFormat(t *testing.T) {
	l := New(Config{Level: "debug", Format: "json"})
	if l.Level.String() != "debug" {
		t.Errorf("expected debug level, got %s", l.Level.String())
	}
}

func TestWithFields(t *testing.T) {
	l := NewDefault("test")
	entry := l.WithFields(map[string]any{"run_id": "abc"})
	if entry.Data["run_id"] != "abc" {
		t.Errorf("expected field to be carried on entry")
	}
}
