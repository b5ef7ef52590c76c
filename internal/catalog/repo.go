package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cardmirror/pkg/models"
)

// ErrNotFound marks lookups for an id that was never ingested.
var ErrNotFound = errors.New("card not found")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// UpsertChunk writes one chunk of cards in a single transaction. The
// transaction is the durability boundary of the pipeline: if the process
// dies mid-run, at most one chunk of writes is lost.
func (r *Repo) UpsertChunk(ctx context.Context, cards []models.Card) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (id, name, type, desc, card_data, image_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  type = excluded.type,
		  desc = excluded.desc,
		  card_data = excluded.card_data,
		  image_url = excluded.image_url
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, c := range cards {
		if _, err := stmt.ExecContext(
			ctx,
			c.ID,
			c.Name,
			c.Type,
			c.Desc,
			string(c.Data),
			c.ImageURL,
		); err != nil {
			return fmt.Errorf("exec upsert for %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Search matches term case-insensitively as a substring of name or desc and
// returns the original records. A blank term matches nothing. Results come
// back in storage order; there is no ranking and no pagination.
func (r *Repo) Search(ctx context.Context, term string) ([]json.RawMessage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []json.RawMessage{}, nil
	}

	kw := "%" + strings.ToLower(term) + "%"
	rows, err := r.DB.QueryContext(ctx, `
		SELECT card_data FROM cards
		WHERE LOWER(name) LIKE ? OR LOWER(desc) LIKE ?
	`, kw, kw)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("search scan: %w", err)
		}
		out = append(out, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) ImageURL(ctx context.Context, id int64) (string, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT image_url FROM cards WHERE id = ?`, id)

	var url string
	if err := row.Scan(&url); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("card %d: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("scan image url: %w", err)
	}
	return url, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return n, nil
}
