// Package journal records arrived bubbles in a local SQLite database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Entry is one completed journey and the reply it received.
type Entry struct {
	JourneyID    string    `json:"journeyId"`
	CurrentID    string    `json:"currentId"`
	SenderName   string    `json:"senderName"`
	Letter       string    `json:"letter"`
	Location     string    `json:"location"`
	ReplyText    string    `json:"replyText"`
	FunFact      string    `json:"funFact"`
	QuizAnswered int       `json:"quizAnswered"`
	QuizCorrect  int       `json:"quizCorrect"`
	Fallback     bool      `json:"fallback"`
	ArrivedAt    time.Time `json:"arrivedAt"`
}

// Store persists entries.
type Store struct {
	db *sql.DB
}

// Open creates or opens the journal at path. ":memory:" keeps it in memory.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return &Store{db: db}, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS arrivals (
			journey_id TEXT PRIMARY KEY,
			current_id TEXT NOT NULL,
			sender_name TEXT NOT NULL,
			letter TEXT NOT NULL,
			location TEXT NOT NULL,
			reply_text TEXT NOT NULL,
			fun_fact TEXT NOT NULL,
			quiz_answered INTEGER NOT NULL DEFAULT 0,
			quiz_correct INTEGER NOT NULL DEFAULT 0,
			fallback BOOLEAN NOT NULL DEFAULT 0,
			arrived_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_arrivals_arrived_at ON arrivals(arrived_at);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Record stores an arrival. Recording the same journey twice is an error.
func (s *Store) Record(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO arrivals (journey_id, current_id, sender_name, letter, location, reply_text, fun_fact, quiz_answered, quiz_correct, fallback, arrived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.JourneyID, e.CurrentID, e.SenderName, e.Letter, e.Location, e.ReplyText,
		e.FunFact, e.QuizAnswered, e.QuizCorrect, e.Fallback, e.ArrivedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record arrival: %w", err)
	}
	return nil
}

// Recent lists up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT journey_id, current_id, sender_name, letter, location, reply_text, fun_fact, quiz_answered, quiz_correct, fallback, arrived_at
		FROM arrivals ORDER BY arrived_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query arrivals: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var arrived int64
		if err := rows.Scan(&e.JourneyID, &e.CurrentID, &e.SenderName, &e.Letter, &e.Location,
			&e.ReplyText, &e.FunFact, &e.QuizAnswered, &e.QuizCorrect, &e.Fallback, &arrived); err != nil {
			return nil, fmt.Errorf("failed to scan arrival: %w", err)
		}
		e.ArrivedAt = time.Unix(0, arrived).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns how many bubbles have arrived at currentID, or everywhere
// when currentID is empty.
func (s *Store) Count(ctx context.Context, currentID string) (int, error) {
	var n int
	var err error
	if currentID == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM arrivals`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM arrivals WHERE current_id = ?`, currentID).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count arrivals: %w", err)
	}
	return n, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
