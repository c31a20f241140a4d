package runs

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, run *Run) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO podcast_runs (id, status, lines, speakers, output_path, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, run.ID, run.Status, run.Lines, pq.Array(run.Speakers), run.OutputPath).Scan(&run.CreatedAt)
}

func (r *repo) MarkRunning(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE podcast_runs SET status = $2 WHERE id = $1
	`, id, StatusRunning)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *repo) Finish(ctx context.Context, id uuid.UUID, o Outcome) error {
	var errText, url sql.NullString
	if o.Err != nil {
		errText = sql.NullString{String: o.Err.Error(), Valid: true}
	}
	if o.OutputURL != "" {
		url = sql.NullString{String: o.OutputURL, Valid: true}
	}
	var dur sql.NullFloat64
	if o.Duration > 0 {
		dur = sql.NullFloat64{Float64: o.Duration.Seconds(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE podcast_runs
		SET status = $2, stage = $3, error = $4, output_url = $5, duration_sec = $6, finished_at = NOW()
		WHERE id = $1
	`, id, o.Status, o.Stage, errText, url, dur)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

const selectRun = `
	SELECT id, status, stage, error, lines, speakers, output_path, output_url, duration_sec, created_at, finished_at
	FROM podcast_runs
`

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := r.db.QueryRowContext(ctx, selectRun+` WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *repo) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, selectRun+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run      Run
		stage    sql.NullString
		finished sql.NullTime
	)
	if err := s.Scan(
		&run.ID,
		&run.Status,
		&stage,
		&run.Error,
		&run.Lines,
		pq.Array(&run.Speakers),
		&run.OutputPath,
		&run.OutputURL,
		&run.DurationSec,
		&run.CreatedAt,
		&finished,
	); err != nil {
		return nil, err
	}
	run.Stage = stage.String
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
