package filter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// ErrBookmarkNotFound is returned when deleting an unknown bookmark
var ErrBookmarkNotFound = errors.New("bookmark not found")

// Bookmark is a saved filter or query expression
type Bookmark struct {
	ID         int64
	Expression string
	CreatedAt  time.Time
}

// Bookmarks persists expressions in the console database
type Bookmarks struct {
	db *sql.DB
}

// NewBookmarks uses an open console database (see migrations.Open)
func NewBookmarks(db *sql.DB) *Bookmarks {
	return &Bookmarks{db: db}
}

// Save stores expression and reports whether it was new
func (b *Bookmarks) Save(ctx context.Context, expression string) (bool, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return false, fmt.Errorf("expression cannot be empty")
	}

	res, err := b.db.ExecContext(ctx, `
		INSERT INTO filter_bookmarks (expression) VALUES (?)
		ON CONFLICT(expression) DO NOTHING
	`, expression)
	if err != nil {
		return false, fmt.Errorf("failed to save bookmark: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check save result: %w", err)
	}
	return n > 0, nil
}

// Delete removes a bookmark by ID
func (b *Bookmarks) Delete(ctx context.Context, id int64) error {
	res, err := b.db.ExecContext(ctx, "DELETE FROM filter_bookmarks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

// List returns all bookmarks, newest first
func (b *Bookmarks) List(ctx context.Context) ([]Bookmark, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, expression, created_at
		FROM filter_bookmarks
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var bm Bookmark
		if err := rows.Scan(&bm.ID, &bm.Expression, &bm.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, bm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookmarks: %w", err)
	}

	return bookmarks, nil
}

type expressions []Bookmark

func (e expressions) String(i int) string { return e[i].Expression }
func (e expressions) Len() int            { return len(e) }

// Search fuzzy-matches bookmarks against query, best match first
func (b *Bookmarks) Search(ctx context.Context, query string) ([]Bookmark, error) {
	all, err := b.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}

	matches := fuzzy.FindFrom(query, expressions(all))
	out := make([]Bookmark, 0, len(matches))
	for _, match := range matches {
		out = append(out, all[match.Index])
	}
	return out, nil
}
