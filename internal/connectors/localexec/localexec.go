// Package localexec provides a local command executor with an allowlist.
package localexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jcmrs/warpos/internal/connectors"
)

// DefaultAllowlist covers the verification commands templates commonly
// declare. Keys are commands, values the permitted subcommands; an empty
// value list permits any arguments.
func DefaultAllowlist() map[string][]string {
	return map[string][]string{
		"go":   {"test", "vet", "build"},
		"git":  {"diff", "status"},
		"npm":  {"test", "run"},
		"make": {},
		"curl": {},
		"test": {},
	}
}

// LocalExec implements the Connector interface for local command execution.
type LocalExec struct {
	workDir string
	allowed map[string][]string
}

// New creates a new LocalExec connector with the default allowlist.
func New(workDir string) *LocalExec {
	return &LocalExec{workDir: workDir, allowed: DefaultAllowlist()}
}

// NewWithAllowlist creates a LocalExec with a caller-provided allowlist.
func NewWithAllowlist(workDir string, allowed map[string][]string) *LocalExec {
	return &LocalExec{workDir: workDir, allowed: allowed}
}

// Name returns the connector identifier.
func (l *LocalExec) Name() string {
	return "localexec"
}

// IsAllowed checks if a command is in the allowlist.
func (l *LocalExec) IsAllowed(cmd string, args []string) bool {
	allowedSubcmds, ok := l.allowed[cmd]
	if !ok {
		return false
	}

	// An empty subcommand list allows any arguments.
	if len(allowedSubcmds) == 0 {
		return true
	}

	if len(args) == 0 {
		return false
	}

	subcmd := args[0]
	for _, allowed := range allowedSubcmds {
		if subcmd == allowed {
			return true
		}
	}
	return false
}

// Execute runs a command if it's in the allowlist.
func (l *LocalExec) Execute(ctx context.Context, cmd string, args []string) (*connectors.ExecResult, error) {
	if !l.IsAllowed(cmd, args) {
		return nil, fmt.Errorf("command not allowed: %s %s", cmd, strings.Join(args, " "))
	}

	execCmd := exec.CommandContext(ctx, cmd, args...)
	if l.workDir != "" {
		execCmd.Dir = l.workDir
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()

	exitCode := 0
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			exitCode = exitError.ExitCode()
		} else {
			return nil, fmt.Errorf("exec error: %w", err)
		}
	}

	return &connectors.ExecResult{
		Command:  cmd,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
