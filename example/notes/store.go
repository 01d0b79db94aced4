package notes

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/unchained/pkg/db"
)

// ErrNotFound is returned when no note has the requested ID.
var ErrNotFound = errors.New("notes: note not found")

// Note is a short text note.
type Note struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Store keeps notes in PostgreSQL when the db extension is registered and in
// memory otherwise.
type Store struct {
	DB *db.Extension `inject:"db,optional"`

	config *Config

	mu     sync.Mutex
	nextID int64
	notes  []Note
}

// NewStore creates a store that reads its limits from cfg.
func NewStore(cfg *Config) *Store {
	return &Store{config: cfg}
}

func (s *Store) InjectionName() string { return "note_store" }

// Limit clamps a requested page size to the configured bounds.
func (s *Store) Limit(requested int) int {
	if requested <= 0 {
		return s.config.PageSize
	}
	return min(requested, s.config.MaxPageSize)
}

// List returns up to limit notes, oldest first.
func (s *Store) List(ctx context.Context, limit int) ([]Note, error) {
	limit = s.Limit(limit)
	if s.DB != nil {
		rows, err := s.DB.Pool().Query(ctx,
			"SELECT id, title, body, created_at FROM notes ORDER BY id LIMIT $1", limit)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, pgx.RowToStructByName[Note])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notes[:min(limit, len(s.notes))]), nil
}

// Get returns the note with the given ID.
func (s *Store) Get(ctx context.Context, id int64) (Note, error) {
	if s.DB != nil {
		var n Note
		err := s.DB.Pool().QueryRow(ctx,
			"SELECT id, title, body, created_at FROM notes WHERE id = $1", id,
		).Scan(&n.ID, &n.Title, &n.Body, &n.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return Note{}, ErrNotFound
		}
		return n, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.notes, func(n Note) bool { return n.ID == id })
	if i < 0 {
		return Note{}, ErrNotFound
	}
	return s.notes[i], nil
}

// Add stores a new note and returns it with its ID set.
func (s *Store) Add(ctx context.Context, title, body string) (Note, error) {
	n := Note{Title: title, Body: body}
	if s.DB != nil {
		err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
			return tx.QueryRow(ctx,
				"INSERT INTO notes (title, body) VALUES ($1, $2) RETURNING id, created_at", title, body,
			).Scan(&n.ID, &n.CreatedAt)
		})
		return n, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = s.nextID
	n.CreatedAt = time.Now().UTC()
	s.notes = append(s.notes, n)
	return n, nil
}
