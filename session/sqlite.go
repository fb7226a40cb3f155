package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tailored-agentic-units/taskloop/core/protocol"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id   TEXT PRIMARY KEY,
	task_content TEXT NOT NULL,
	plan         TEXT NOT NULL,
	history      TEXT NOT NULL,
	current_step INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_status_updated ON sessions(status, updated_at);
`

const upsert = `
INSERT INTO sessions (session_id, task_content, plan, history, current_step, status, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
	task_content = excluded.task_content,
	plan         = excluded.plan,
	history      = excluded.history,
	current_step = excluded.current_step,
	status       = excluded.status,
	updated_at   = excluded.updated_at
WHERE sessions.status != 'done' OR excluded.status = 'done'
`

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite session database at
// path. The special path ":memory:" opens a private in-memory database.
func NewSQLiteStore(path string) (Store, error) {
	inMemory := path == ":memory:"
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if !inMemory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure session database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Save(ctx context.Context, sess *Session) error {
	if err := validate(sess); err != nil {
		return err
	}

	plan, err := json.Marshal(sess.Plan)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}
	history, err := json.Marshal(sess.Transcript)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}

	updatedAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, upsert,
		sess.ID, sess.Task, string(plan), string(history),
		sess.Progress, string(sess.Status), updatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrStatusRegression, sess.ID)
	}

	sess.UpdatedAt = updatedAt
	return nil
}

func (s *sqliteStore) Load(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, task_content, plan, history, current_step, status, updated_at
		FROM sessions WHERE session_id = ?`, id)

	var (
		sess              Session
		plan, history, ts string
		status            string
	)
	err := row.Scan(&sess.ID, &sess.Task, &plan, &history, &sess.Progress, &status, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	sess.Status = Status(status)
	if err := json.Unmarshal([]byte(plan), &sess.Plan); err != nil {
		return nil, fmt.Errorf("%w: %s: plan: %v", ErrLoadFailed, id, err)
	}
	var transcript []protocol.Message
	if err := json.Unmarshal([]byte(history), &transcript); err != nil {
		return nil, fmt.Errorf("%w: %s: history: %v", ErrLoadFailed, id, err)
	}
	sess.Transcript = transcript
	if sess.UpdatedAt, err = time.Parse(timeLayout, ts); err != nil {
		return nil, fmt.Errorf("%w: %s: updated_at: %v", ErrLoadFailed, id, err)
	}

	return &sess, nil
}

func (s *sqliteStore) ListRunning(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, task_content, current_step, updated_at
		FROM sessions WHERE status = ?
		ORDER BY updated_at DESC, session_id DESC`, string(StatusRunning))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var (
			sum Summary
			ts  string
		)
		if err := rows.Scan(&sum.ID, &sum.Task, &sum.Progress, &ts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
		}
		if sum.UpdatedAt, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return summaries, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
