// Package builtin provides the reference capabilities shipped with taskloop:
// file listing, reading and writing, shell commands, directory changes, and
// system information. All of them resolve relative paths against a shared
// Workspace rather than the process working directory.
package builtin

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Workspace is the working directory shared by the built-in capabilities.
type Workspace struct {
	mu  sync.RWMutex
	dir string
}

// NewWorkspace creates a workspace rooted at dir, which must exist.
func NewWorkspace(dir string) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace %q is not a directory", dir)
	}
	return &Workspace{dir: abs}, nil
}

// Dir returns the current working directory.
func (w *Workspace) Dir() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dir
}

// Resolve returns p as an absolute path, interpreting relative paths against
// the current working directory.
func (w *Workspace) Resolve(p string) string {
	if p == "" {
		return w.Dir()
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(w.Dir(), p)
}

// Chdir changes the working directory. The target must be an existing
// directory.
func (w *Workspace) Chdir(p string) (string, error) {
	target := w.Resolve(p)
	info, err := os.Stat(target)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", target)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.dir = target
	return target, nil
}
