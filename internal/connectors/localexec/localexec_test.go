package localexec

import (
	"context"
	"strings"
	"testing"
)

func TestIsAllowed(t *testing.T) {
	exec := New("")

	tests := []struct {
		cmd     string
		args    []string
		allowed bool
	}{
		{"go", []string{"test", "./..."}, true},
		{"git", []string{"status"}, true},
		{"git", []string{"diff"}, true},
		{"make", []string{"check"}, true},    // empty subcommand list allows anything
		{"make", nil, true},                  // including no args at all
		{"git", []string{"push"}, false},     // not in allowlist
		{"rm", []string{"-rf", "/"}, false},  // not in allowlist
		{"go", []string{"run", "."}, false},  // subcommand not allowed
		{"go", []string{}, false},            // no subcommand
		{"unknown", []string{"cmd"}, false},  // unknown command
	}

	for _, tt := range tests {
		t.Run(tt.cmd+" "+strings.Join(tt.args, " "), func(t *testing.T) {
			got := exec.IsAllowed(tt.cmd, tt.args)
			if got != tt.allowed {
				t.Errorf("IsAllowed(%s, %v) = %v, want %v", tt.cmd, tt.args, got, tt.allowed)
			}
		})
	}
}

func TestCustomAllowlist(t *testing.T) {
	exec := NewWithAllowlist("", map[string][]string{"echo": {}})

	if !exec.IsAllowed("echo", []string{"hello"}) {
		t.Error("echo should be allowed by the custom allowlist")
	}
	if exec.IsAllowed("go", []string{"test"}) {
		t.Error("go should not be allowed by the custom allowlist")
	}
}

func TestExecuteRejectsDisallowed(t *testing.T) {
	exec := New("")

	_, err := exec.Execute(context.Background(), "rm", []string{"-rf", "/tmp/x"})
	if err == nil {
		t.Fatal("expected rejection for disallowed command")
	}
	if !strings.Contains(err.Error(), "not allowed") {
		t.Errorf("unexpected error: %v", err)
	}
}
