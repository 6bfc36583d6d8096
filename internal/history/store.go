package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ytscribe/internal/config"
)

// Entry is one handled message.
type Entry struct {
	ID              int64
	RequestID       string
	ChatID          int64
	URL             string
	VideoID         string
	Title           string
	Stage           string
	ErrorKind       string
	ErrorMessage    string
	TranscriptChars int
	Chunks          int
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Duration is the wall time the pipeline spent on the message.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt.Before(e.StartedAt) {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// StageCount is the number of entries that ended in a stage.
type StageCount struct {
	Stage string
	Count int
}

// Store manages request history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// timeLayout is fixed width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the history database in the state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts an entry and returns its row id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `INSERT INTO requests
			(request_id, chat_id, url, video_id, title, stage, error_kind, error_message,
			 transcript_chars, chunks, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.RequestID, e.ChatID, nullable(e.URL), nullable(e.VideoID), nullable(e.Title),
			e.Stage, nullable(e.ErrorKind), nullable(e.ErrorMessage),
			e.TranscriptChars, e.Chunks, formatTime(e.StartedAt), formatTime(e.FinishedAt))
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("record request: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first. A non-zero chatID filters by chat.
func (s *Store) Recent(ctx context.Context, limit int, chatID int64) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, request_id, chat_id, url, video_id, title, stage, error_kind, error_message,
		transcript_chars, chunks, started_at, finished_at FROM requests`
	args := []any{}
	if chatID != 0 {
		query += " WHERE chat_id = ?"
		args = append(args, chatID)
	}
	query += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// StageCounts tallies entries by final stage.
func (s *Store) StageCounts(ctx context.Context) ([]StageCount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT stage, COUNT(1) FROM requests GROUP BY stage ORDER BY COUNT(1) DESC, stage")
	if err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}
	defer rows.Close()

	var counts []StageCount
	for rows.Next() {
		var c StageCount
		if err := rows.Scan(&c.Stage, &c.Count); err != nil {
			return nil, fmt.Errorf("scan stage count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Prune deletes entries that started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM requests WHERE started_at < ?", formatTime(cutoff))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return removed, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e                                    Entry
		url, videoID, title, errKind, errMsg sql.NullString
		startedRaw, finishedRaw              string
	)
	if err := rows.Scan(&e.ID, &e.RequestID, &e.ChatID, &url, &videoID, &title, &e.Stage,
		&errKind, &errMsg, &e.TranscriptChars, &e.Chunks, &startedRaw, &finishedRaw); err != nil {
		return Entry{}, fmt.Errorf("scan history row: %w", err)
	}
	e.URL, e.VideoID, e.Title = url.String, videoID.String, title.String
	e.ErrorKind, e.ErrorMessage = errKind.String, errMsg.String
	e.StartedAt, _ = time.Parse(timeLayout, startedRaw)
	e.FinishedAt, _ = time.Parse(timeLayout, finishedRaw)
	return e, nil
}

func nullable(value string) sql.NullString {
	value = strings.TrimSpace(value)
	return sql.NullString{String: value, Valid: value != ""}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}
