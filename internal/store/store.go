package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an entry does not exist for the owner.
var ErrNotFound = errors.New("store: entry not found")

// DefaultListLimit caps ListEntries when the caller passes no limit.
const DefaultListLimit = 50

// MaxListLimit is the largest page ListEntries returns.
const MaxListLimit = 500

//go:embed schema.sql
var schema string

// Entry is a saved journal transcript.
type Entry struct {
	ID        string    `json:"id"`
	Owner     string    `json:"-"`
	Text      string    `json:"text"`
	Sentiment string    `json:"sentiment"`
	CreatedAt time.Time `json:"timestamp"`
}

// Entries is the persistence boundary used by sessions and handlers.
type Entries interface {
	InsertEntry(ctx context.Context, e Entry) (Entry, error)
	ListEntries(ctx context.Context, owner string, limit int) ([]Entry, error)
	DeleteEntry(ctx context.Context, owner, id string) error
}

// prepare fills in the ID and timestamp of a new entry and validates it.
func prepare(e Entry, now time.Time) (Entry, error) {
	e.Text = strings.TrimSpace(e.Text)
	if e.Text == "" {
		return Entry{}, fmt.Errorf("store: entry text is empty")
	}
	if e.Owner == "" {
		return Entry{}, fmt.Errorf("store: entry owner is empty")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// Store persists entries in Postgres.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) InsertEntry(ctx context.Context, e Entry) (Entry, error) {
	e, err := prepare(e, time.Now())
	if err != nil {
		return Entry{}, err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO journal_entries (id, owner, text, sentiment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, e.Owner, e.Text, e.Sentiment, e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

// ListEntries returns the owner's entries, newest first.
func (s *Store) ListEntries(ctx context.Context, owner string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, owner, text, sentiment, created_at
		FROM journal_entries
		WHERE owner = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, owner, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Owner, &e.Text, &e.Sentiment, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) DeleteEntry(ctx context.Context, owner, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	result, err := s.db.Exec(ctx, `
		DELETE FROM journal_entries WHERE owner = $1 AND id = $2
	`, owner, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
