package session

import (
	"fmt"
	"path/filepath"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config selects and locates the session store.
type Config struct {
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// Path is the database file for sqlite and the directory for file.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// DefaultConfig returns a SQLite store at ./memory/state.db.
func DefaultConfig() Config {
	return Config{
		Backend: BackendSQLite,
		Path:    filepath.Join("memory", "state.db"),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
}

// NewStore creates a Store from configuration.
func NewStore(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		path := cfg.Path
		if path == "" {
			path = DefaultConfig().Path
		}
		return NewSQLiteStore(path)
	case BackendFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file session store requires a path")
		}
		return NewFileStore(cfg.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
