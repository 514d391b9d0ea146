package matchstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codequest/arena/internal/match"
	_ "modernc.org/sqlite"
)

// Store keeps one row per completed or aborted match in a sqlite database.
// It implements match.Recorder.
type Store struct {
	dbPath string

	mu sync.Mutex
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create match history directory for %q: %w", dbPath, err)
	}
	s := &Store{dbPath: dbPath}
	if err := s.initDB(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open match history database %q: %w", s.dbPath, err)
	}
	return db, nil
}

func (s *Store) initDB(ctx context.Context) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS matches (
			run_id TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			server_image TEXT NOT NULL,
			clients_json TEXT NOT NULL,
			outcome TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			started_at_unix INTEGER NOT NULL,
			finished_at_unix INTEGER NOT NULL,
			log_dir TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("initialize match history schema: %w", err)
	}
	return nil
}

// Record inserts one session summary. Re-recording the same run ID replaces
// the previous row.
func (s *Store) Record(ctx context.Context, rec match.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clientsJSON, err := json.Marshal(rec.Clients)
	if err != nil {
		return fmt.Errorf("encode client roster: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
		INSERT OR REPLACE INTO matches (
			run_id, token, server_image, clients_json, outcome, error,
			started_at_unix, finished_at_unix, log_dir
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.RunID,
		rec.Token,
		rec.ServerImage,
		string(clientsJSON),
		string(rec.Outcome),
		rec.Error,
		rec.StartedAt.Unix(),
		rec.FinishedAt.Unix(),
		rec.LogDir,
	)
	if err != nil {
		return fmt.Errorf("record match %s: %w", rec.RunID, err)
	}
	return nil
}

// List returns the most recent matches, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]match.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `
		SELECT run_id, token, server_image, clients_json, outcome, error,
			started_at_unix, finished_at_unix, log_dir
		FROM matches
		ORDER BY finished_at_unix DESC, run_id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query match history: %w", err)
	}
	defer rows.Close()

	items := make([]match.Record, 0)
	for rows.Next() {
		var rec match.Record
		var clientsJSON string
		var startedUnix, finishedUnix int64
		if err := rows.Scan(
			&rec.RunID,
			&rec.Token,
			&rec.ServerImage,
			&clientsJSON,
			(*string)(&rec.Outcome),
			&rec.Error,
			&startedUnix,
			&finishedUnix,
			&rec.LogDir,
		); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		if err := json.Unmarshal([]byte(clientsJSON), &rec.Clients); err != nil {
			return nil, fmt.Errorf("decode client roster for %s: %w", rec.RunID, err)
		}
		rec.StartedAt = time.Unix(startedUnix, 0).UTC()
		rec.FinishedAt = time.Unix(finishedUnix, 0).UTC()
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match history: %w", err)
	}
	return items, nil
}
