package session_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/taskloop/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := session.DefaultConfig()

	if cfg.Backend != session.BackendSQLite {
		t.Errorf("got backend %q, want %q", cfg.Backend, session.BackendSQLite)
	}
	if cfg.Path != filepath.Join("memory", "state.db") {
		t.Errorf("got path %q", cfg.Path)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Merge(&session.Config{Path: "/var/lib/taskloop/state.db"})

	if cfg.Backend != session.BackendSQLite {
		t.Errorf("backend overwritten by empty source: %q", cfg.Backend)
	}
	if cfg.Path != "/var/lib/taskloop/state.db" {
		t.Errorf("got path %q", cfg.Path)
	}
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     session.Config
		wantErr error
	}{
		{"sqlite", session.Config{Backend: session.BackendSQLite, Path: filepath.Join(dir, "s.db")}, nil},
		{"file", session.Config{Backend: session.BackendFile, Path: filepath.Join(dir, "sessions")}, nil},
		{"memory", session.Config{Backend: session.BackendMemory}, nil},
		{"unknown", session.Config{Backend: "etcd"}, session.ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := session.NewStore(&tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewStore() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore() failed: %v", err)
			}
			defer store.Close()
		})
	}
}

func TestNewStore_FileRequiresPath(t *testing.T) {
	if _, err := session.NewStore(&session.Config{Backend: session.BackendFile}); err == nil {
		t.Error("expected error for file backend without path")
	}
}
