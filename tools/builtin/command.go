package builtin

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
	"github.com/tailored-agentic-units/taskloop/tools"
)

const (
	defaultCommandTimeout = 60 * time.Second
	maxCommandTimeout     = 10 * time.Minute
	maxCommandOutput      = 64 * 1024
)

// RunCommand executes a shell command in the working directory.
func RunCommand(ws *Workspace) tools.Capability {
	return tools.Func(protocol.Capability{
		Name:        "run_command",
		Description: "Runs a shell command in the working directory and returns its combined output and exit status.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{
					"type":        "string",
					"description": "command line to execute",
				},
				"timeout": map[string]any{
					"type":        "integer",
					"description": "timeout in seconds (default 60)",
				},
			},
			"required": []string{"command"},
		},
	}, func(ctx context.Context, args tools.Args) (string, error) {
		if err := args.Only("command", "timeout"); err != nil {
			return "", err
		}
		if err := args.Require("command"); err != nil {
			return "", err
		}

		timeout := time.Duration(args.Int("timeout", int(defaultCommandTimeout/time.Second))) * time.Second
		if timeout <= 0 {
			timeout = defaultCommandTimeout
		}
		timeout = min(timeout, maxCommandTimeout)

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := shellCommand(ctx, args.String("command"))
		cmd.Dir = ws.Dir()
		cmd.WaitDelay = 2 * time.Second

		out, err := cmd.CombinedOutput()
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("command timed out after %s: %w", timeout, ctx.Err())
		}

		exitCode := 0
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return "", err
			}
			exitCode = exitErr.ExitCode()
		}

		return formatOutput(out, exitCode), nil
	})
}

func shellCommand(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", line)
	}
	return exec.CommandContext(ctx, "sh", "-c", line)
}

func formatOutput(out []byte, exitCode int) string {
	text := string(out)
	if len(text) > maxCommandOutput {
		text = text[:maxCommandOutput] + "\n... output truncated"
	}
	text = strings.TrimRight(text, "\n")
	if text == "" {
		text = "(no output)"
	}
	return fmt.Sprintf("%s\n[exit status %d]", text, exitCode)
}
