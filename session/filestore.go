package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const fileExt = ".json"

type fileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore creates a Store that keeps one JSON document per session
// under root. Writes are atomic: a crash leaves either the previous or the
// new document, never a partial one.
func NewFileStore(root string) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir %s: %w", root, err)
	}
	return &fileStore{root: root}, nil
}

func (f *fileStore) path(id string) string {
	return filepath.Join(f.root, id+fileExt)
}

func (f *fileStore) read(id string) (*Session, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}
	return &s, nil
}

func (f *fileStore) Save(_ context.Context, s *Session) error {
	if err := validate(s); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, err := f.read(s.ID)
	switch {
	case err == nil:
		if prev.Status == StatusDone && s.Status != StatusDone {
			return fmt.Errorf("%w: %s", ErrStatusRegression, s.ID)
		}
	case errors.Is(err, ErrNotFound):
	default:
		return err
	}

	stamp(s)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.ID, err)
	}

	tmp, err := os.CreateTemp(f.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.ID, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.ID, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.ID, err)
	}
	if err := os.Rename(tmpName, f.path(s.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.ID, err)
	}
	return nil
}

func (f *fileStore) Load(_ context.Context, id string) (*Session, error) {
	if strings.ContainsAny(id, `/\`) || id == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(id)
}

func (f *fileStore) ListRunning(_ context.Context) ([]Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != fileExt {
			continue
		}
		s, err := f.read(strings.TrimSuffix(name, fileExt))
		if err != nil {
			return nil, err
		}
		if s.Status == StatusRunning {
			summaries = append(summaries, s.Summarize())
		}
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (f *fileStore) Close() error { return nil }
