package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/logcost/logcost-go/pkg/tracker"
)

// schema creates the capture table. The document column holds the full
// snapshot JSON; captured_at and total_cost are split out so retention and
// trend queries never parse JSON.
const schema = `
CREATE TABLE IF NOT EXISTS captures (
    id TEXT PRIMARY KEY,
    captured_at INTEGER NOT NULL,
    provider TEXT NOT NULL,
    total_bytes INTEGER NOT NULL,
    total_cost REAL NOT NULL,
    document TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_captures_captured_at ON captures(captured_at);
`

// SQLiteConfig configures the SQLite history store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore implements Store using SQLite for persistence.
// It survives sidecar restarts, which keeps trend baselines intact.
//
// SQLiteStore uses a write-ahead log (WAL) so the sidecar's status endpoint
// can read history while a capture is being appended.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	mu        sync.RWMutex
	closeOnce sync.Once

	appendStmt *sql.Stmt
	listStmt   *sql.Stmt
	pruneStmt  *sql.Stmt
}

// NewSQLiteStore opens or creates a SQLite history database.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{
		db:     db,
		path:   cfg.Path,
		logger: slog.Default().With("component", "history.sqlite"),
	}

	if err := s.initialize(cfg.BusyTimeout); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("history store opened", "path", cfg.Path)
	return s, nil
}

// initialize enables WAL mode, sets the busy timeout and creates the schema.
func (s *SQLiteStore) initialize(busyTimeout time.Duration) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.appendStmt, err = s.db.Prepare(`
		INSERT INTO captures (id, captured_at, provider, total_bytes, total_cost, document)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare append statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT id, captured_at, document
		FROM captures
		ORDER BY captured_at ASC, id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`
		DELETE FROM captures
		WHERE captured_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Append adds a capture to the history.
func (s *SQLiteStore) Append(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("history entry id cannot be empty")
	}
	if entry.CapturedAt.IsZero() {
		return fmt.Errorf("history entry capture time cannot be zero")
	}

	document, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.appendStmt.ExecContext(ctx,
		entry.ID,
		entry.CapturedAt.UnixNano(),
		entry.Snapshot.Provider,
		entry.Snapshot.TotalBytes,
		entry.Snapshot.TotalCost,
		string(document),
	)
	if err != nil {
		return fmt.Errorf("failed to append capture: %w", err)
	}
	return nil
}

// List returns all retained captures ordered oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			id       string
			captured int64
			document string
		)
		if err := rows.Scan(&id, &captured, &document); err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}

		var snap tracker.Snapshot
		if err := json.Unmarshal([]byte(document), &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal capture %s: %w", id, err)
		}

		entries = append(entries, Entry{
			ID:         id,
			CapturedAt: time.Unix(0, captured).UTC(),
			Snapshot:   snap,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating captures: %w", err)
	}
	return entries, nil
}

// Prune removes captures taken before the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.pruneStmt.ExecContext(ctx, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune captures: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		if s.appendStmt != nil {
			s.appendStmt.Close()
		}
		if s.listStmt != nil {
			s.listStmt.Close()
		}
		if s.pruneStmt != nil {
			s.pruneStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}
