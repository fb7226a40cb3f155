package tools

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

// ResultKind categorizes a dispatch outcome.
type ResultKind int

const (
	Success ResultKind = iota
	NotFound
	ArgumentError
	RuntimeError
)

func (k ResultKind) String() string {
	switch k {
	case Success:
		return "success"
	case NotFound:
		return "not_found"
	case ArgumentError:
		return "argument_error"
	case RuntimeError:
		return "runtime_error"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the outcome of a dispatch. Content is the capability output on
// success and a descriptive message otherwise.
type Result struct {
	Content  string
	Kind     ResultKind
	Resolved string
}

// IsError reports whether the dispatch did not succeed.
func (r Result) IsError() bool { return r.Kind != Success }

// aliases maps names models commonly use for the built-in capabilities.
var aliases = map[string]string{
	"ls":              "list_files",
	"list":            "list_files",
	"list_dir":        "list_files",
	"list_directory":  "list_files",
	"dir":             "list_files",
	"cat":             "read_file",
	"open_file":       "read_file",
	"view_file":       "read_file",
	"save_file":       "write_file",
	"create_file":     "write_file",
	"write":           "write_file",
	"vscode_write":    "write_file",
	"run":             "run_command",
	"exec":            "run_command",
	"shell":           "run_command",
	"execute":         "run_command",
	"run_python":      "run_command",
	"run_python_file": "run_command",
	"cd":              "change_directory",
	"chdir":           "change_directory",
	"time":            "system_info",
	"datetime":        "system_info",
	"now":             "system_info",
	"os_info":         "system_info",
	"cwd":             "system_info",
	"pwd":             "system_info",
}

// synonyms maps argument keys to their canonical spelling.
var synonyms = map[string]string{
	"file":            "filename",
	"path":            "filename",
	"file_path":       "filename",
	"filepath":        "filename",
	"file_name":       "filename",
	"fname":           "filename",
	"content":         "code",
	"text":            "code",
	"body":            "code",
	"data":            "code",
	"source":          "code",
	"cmd":             "command",
	"shell":           "command",
	"script":          "command",
	"command_line":    "command",
	"operation":       "action",
	"op":              "action",
	"mode":            "action",
	"dir":             "path",
	"directory":       "path",
	"folder":          "path",
	"cwd":             "path",
	"dirname":         "path",
	"pkg":             "package",
	"seconds":         "timeout",
	"timeout_seconds": "timeout",
}

// normalizeArgs renames argument keys the capability does not declare onto
// a declared key differing only in case, else to their canonical synonym
// when the capability declares that synonym. Keys
// are visited in sorted order so conflicting synonyms resolve the same way
// every time; an explicitly supplied canonical key always wins.
func normalizeArgs(def protocol.Capability, args map[string]any) Args {
	declared := make(map[string]string)
	for _, name := range def.ParameterNames() {
		declared[strings.ToLower(name)] = name
	}

	out := make(Args, len(args))
	keys := make([]string, 0, len(args))
	for k, v := range args {
		if def.Accepts(k) {
			out[k] = v
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		folded := strings.ToLower(strings.TrimSpace(k))
		if name, ok := declared[folded]; ok {
			if _, taken := out[name]; !taken {
				out[name] = args[k]
				continue
			}
		}
		canonical, ok := synonyms[folded]
		if ok && def.Accepts(canonical) {
			if _, taken := out[canonical]; !taken {
				out[canonical] = args[k]
				continue
			}
		}
		out[k] = args[k]
	}
	return out
}

func classify(resolved string, def protocol.Capability, out string, err error) Result {
	switch {
	case err == nil:
		return Result{Kind: Success, Resolved: resolved, Content: out}
	case errors.Is(err, ErrArgument):
		content := fmt.Sprintf("argument error in %s: %v", resolved, err)
		if params := def.ParameterNames(); len(params) > 0 {
			content += fmt.Sprintf(" (expected parameters: %s)", strings.Join(params, ", "))
		}
		return Result{Kind: ArgumentError, Resolved: resolved, Content: content}
	default:
		return Result{
			Kind:     RuntimeError,
			Resolved: resolved,
			Content:  fmt.Sprintf("%s failed: %v", resolved, err),
		}
	}
}
