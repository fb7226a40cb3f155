package builtin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
	"github.com/tailored-agentic-units/taskloop/tools"
)

// ListFiles lists the entries of the working directory or a subdirectory.
func ListFiles(ws *Workspace) tools.Capability {
	return tools.Func(protocol.Capability{
		Name:        "list_files",
		Description: "Lists files and directories. Directories end with '/', files show their size.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "directory to list, relative to the working directory (default: working directory)",
				},
			},
		},
	}, func(_ context.Context, args tools.Args) (string, error) {
		dir := ws.Resolve(args.String("path"))

		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return fmt.Sprintf("directory is empty: %s", dir), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s:\n", dir)
		for _, e := range entries {
			if e.IsDir() {
				fmt.Fprintf(&b, "%s/\n", e.Name())
				continue
			}
			info, err := e.Info()
			if err != nil {
				fmt.Fprintf(&b, "%s\n", e.Name())
				continue
			}
			fmt.Fprintf(&b, "%s (%d bytes)\n", e.Name(), info.Size())
		}
		return b.String(), nil
	})
}

// ReadFile returns the contents of a file.
func ReadFile(ws *Workspace) tools.Capability {
	return tools.Func(protocol.Capability{
		Name:        "read_file",
		Description: "Reads the contents of a file.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filename": map[string]any{
					"type":        "string",
					"description": "path of the file to read",
				},
			},
			"required": []string{"filename"},
		},
	}, func(_ context.Context, args tools.Args) (string, error) {
		if err := args.Require("filename"); err != nil {
			return "", err
		}

		path := ws.Resolve(args.String("filename"))
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("file does not exist: %s", path)
			}
			return "", err
		}
		if len(data) == 0 {
			return fmt.Sprintf("%s is empty", path), nil
		}
		return string(data), nil
	})
}

// WriteFile creates or overwrites a file. Parent directories are created and
// the write is atomic.
func WriteFile(ws *Workspace) tools.Capability {
	return tools.Func(protocol.Capability{
		Name:        "write_file",
		Description: "Writes content to a file, creating parent directories and replacing any existing file.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filename": map[string]any{
					"type":        "string",
					"description": "path of the file to write",
				},
				"code": map[string]any{
					"type":        "string",
					"description": "full content to write",
				},
			},
			"required": []string{"filename", "code"},
		},
	}, func(_ context.Context, args tools.Args) (string, error) {
		if err := args.Only("filename", "code"); err != nil {
			return "", err
		}
		if err := args.Require("filename"); err != nil {
			return "", err
		}
		if _, ok := args["code"]; !ok {
			return "", fmt.Errorf("%w: missing required argument %q", tools.ErrArgument, "code")
		}

		path := ws.Resolve(args.String("filename"))
		content := args.String("code")
		if err := writeAtomic(path, []byte(content)); err != nil {
			return "", err
		}
		return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
	})
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// ChangeDirectory moves the workspace to another directory.
func ChangeDirectory(ws *Workspace) tools.Capability {
	return tools.Func(protocol.Capability{
		Name:        "change_directory",
		Description: "Changes the working directory used by the other capabilities.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "directory to switch to, absolute or relative",
				},
			},
			"required": []string{"path"},
		},
	}, func(_ context.Context, args tools.Args) (string, error) {
		if err := args.Only("path"); err != nil {
			return "", err
		}
		if err := args.Require("path"); err != nil {
			return "", err
		}
		dir, err := ws.Chdir(args.String("path"))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("working directory is now %s", dir), nil
	})
}
