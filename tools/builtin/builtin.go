package builtin

import (
	"fmt"

	"github.com/tailored-agentic-units/taskloop/tools"
)

var constructors = map[string]func(*Workspace) tools.Capability{
	"list_files":       ListFiles,
	"read_file":        ReadFile,
	"write_file":       WriteFile,
	"run_command":      RunCommand,
	"change_directory": ChangeDirectory,
	"system_info":      SystemInfo,
}

// Names lists every built-in capability name.
func Names() []string {
	return []string{"change_directory", "list_files", "read_file", "run_command", "system_info", "write_file"}
}

// All returns every built-in capability bound to ws.
func All(ws *Workspace) []tools.Capability {
	caps := make([]tools.Capability, 0, len(constructors))
	for _, name := range Names() {
		caps = append(caps, constructors[name](ws))
	}
	return caps
}

// Named returns the listed built-in capabilities bound to ws. An empty list
// selects all of them.
func Named(ws *Workspace, names ...string) ([]tools.Capability, error) {
	if len(names) == 0 {
		return All(ws), nil
	}
	caps := make([]tools.Capability, 0, len(names))
	for _, name := range names {
		ctor, ok := constructors[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", tools.ErrNotFound, name)
		}
		caps = append(caps, ctor(ws))
	}
	return caps, nil
}
