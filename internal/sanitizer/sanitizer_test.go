package sanitizer

import (
	"errors"
	"strings"
	"testing"
)

func TestClean_SizeLimit(t *testing.T) {
	limit := 16
	s := New(limit)

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Clean(strings.Repeat("a", tt.inputSize))
			if tt.wantErr {
				if !errors.Is(err, ErrInputTooLarge) {
					t.Errorf("Clean() expected ErrInputTooLarge for size %d, got %v", tt.inputSize, err)
				}
			} else if err != nil {
				t.Errorf("Clean() unexpected error: %v", err)
			}
		})
	}
}

func TestClean_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed\r", "Line1\nLine2\tTabbed\r"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
		{"Unicode", "café ✓", "café ✓"},
	}

	s := New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Clean(tt.input)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestClean_InvalidUTF8(t *testing.T) {
	if _, err := New(0).Clean("bad\xff"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}

func TestCleanAll(t *testing.T) {
	s := New(8)

	got, err := s.CleanAll([]string{"a\x00", "b"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Unexpected result: %q", got)
	}

	if _, err := s.CleanAll([]string{"ok", "far too long"}); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Expected ErrInputTooLarge, got %v", err)
	}
}
