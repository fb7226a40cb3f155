package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store persists sessions. Save is a whole-record upsert: the latest save
// for an id wins, except that a running record never replaces a done one.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save writes s, stamping s.UpdatedAt with the time of the write.
	// Returns ErrStatusRegression when s is running and the stored
	// record is done; the stored record is left unchanged.
	Save(ctx context.Context, s *Session) error
	// Load returns the stored record or ErrNotFound.
	Load(ctx context.Context, id string) (*Session, error)
	// ListRunning returns running sessions, most recently updated first.
	ListRunning(ctx context.Context) ([]Summary, error)
	// Close releases the store's resources.
	Close() error
}

func validate(s *Session) error {
	if s == nil {
		return fmt.Errorf("%w: nil session", ErrInvalidSession)
	}
	if s.ID == "" || strings.ContainsAny(s.ID, `/\`) || s.ID != filepath.Base(s.ID) {
		return fmt.Errorf("%w: bad id %q", ErrInvalidSession, s.ID)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidSession, s.Status)
	}
	return nil
}

func stamp(s *Session) {
	s.UpdatedAt = time.Now().UTC()
}

func sortSummaries(summaries []Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID > summaries[j].ID
	})
}
