package prompts

import (
	"context"
	"database/sql"
	"errors"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) ListAll(ctx context.Context) ([]*Prompt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, prompt, updated_at
		FROM podcast_prompts
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.Name, &p.Prompt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *repo) Upsert(ctx context.Context, name, prompt string) (*Prompt, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO podcast_prompts (name, prompt, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET prompt = EXCLUDED.prompt, updated_at = NOW()
		RETURNING name, prompt, updated_at
	`, name, prompt)

	var p Prompt
	if err := row.Scan(&p.Name, &p.Prompt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repo) GetByName(ctx context.Context, name string) (string, error) {
	var prompt string
	err := r.db.QueryRowContext(ctx, `
		SELECT prompt
		FROM podcast_prompts
		WHERE name = $1
	`, name).Scan(&prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return prompt, nil
}
