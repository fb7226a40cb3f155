package builtin

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
	"github.com/tailored-agentic-units/taskloop/tools"
)

// SystemInfo reports the time, operating system, or working directory.
func SystemInfo(ws *Workspace) tools.Capability {
	return systemInfo{ws: ws, now: time.Now}
}

type systemInfo struct {
	ws  *Workspace
	now func() time.Time
}

func (s systemInfo) Definition() protocol.Capability {
	return protocol.Capability{
		Name:        "system_info",
		Description: "Returns system information: current time, operating system, or working directory.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{
					"type":        "string",
					"description": "one of time, os, cwd; omit for all",
				},
			},
		},
	}
}

func (s systemInfo) Execute(_ context.Context, args tools.Args) (string, error) {
	switch action := strings.ToLower(strings.TrimSpace(args.String("action"))); action {
	case "time", "datetime", "now", "date":
		return s.now().Format(time.RFC3339), nil
	case "os", "os_info", "platform":
		return s.platform(), nil
	case "cwd", "pwd", "dir":
		return s.ws.Dir(), nil
	case "", "all", "summary", "system_info":
		return fmt.Sprintf("time: %s\nos: %s\ncwd: %s",
			s.now().Format(time.RFC3339), s.platform(), s.ws.Dir()), nil
	default:
		return "", fmt.Errorf("%w: unknown action %q (expected time, os or cwd)", tools.ErrArgument, action)
	}
}

func (s systemInfo) platform() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s/%s (host %s)", runtime.GOOS, runtime.GOARCH, host)
}
