package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("something went wrong"), expected: "Error: something went wrong"},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("load week: %w", errors.New("connection refused")),
			expected: "Error: load week: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestAction(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		err      error
		expected string
	}{
		{name: "nil error", action: "save", err: nil, expected: ""},
		{name: "move failure", action: "move", err: errors.New("remote rejected request"), expected: "Could not move: remote rejected request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Action(tt.action, tt.err); got != tt.expected {
				t.Errorf("Action() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestHint(t *testing.T) {
	dialErr := &url.Error{
		Op:  "Get",
		URL: "http://127.0.0.1:8765/",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
	}

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "plain error", err: errors.New("week key must be a Monday"), expected: ""},
		{name: "unreachable endpoint", err: fmt.Errorf("load week: %w", dialErr), expected: offlineHint},
		{name: "timeout", err: fmt.Errorf("save slot: %w", context.DeadlineExceeded), expected: offlineHint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hint(tt.err); got != tt.expected {
				t.Errorf("Hint() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFatal(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	origStderr, origExit := stderr, exit
	stderr, exit = &buf, func(c int) { code = c }
	defer func() { stderr, exit = origStderr, origExit }()

	Fatal(nil)
	if code != -1 || buf.Len() != 0 {
		t.Fatalf("Fatal(nil) exited %d with %q", code, buf.String())
	}

	Fatal(fmt.Errorf("load week: %w", context.DeadlineExceeded))
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	out := buf.String()
	if !strings.Contains(out, "Error: load week: context deadline exceeded") || !strings.Contains(out, offlineHint) {
		t.Errorf("unexpected stderr: %q", out)
	}
}
