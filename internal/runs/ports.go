package runs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Vovarama1992/podcast_maker/internal/podcast"
)

var (
	ErrNotFound  = errors.New("run not found")
	ErrQueueFull = errors.New("run queue is full")
	ErrStopped   = errors.New("run service is stopped")
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusEmpty   Status = "empty" // нечего было склеивать
	StatusFailed  Status = "failed"
)

type Run struct {
	ID          uuid.UUID  `json:"id"`
	Status      Status     `json:"status"`
	Stage       string     `json:"stage,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Lines       int        `json:"lines"`
	Speakers    []string   `json:"speakers"`
	OutputPath  string     `json:"output_path"`
	OutputURL   *string    `json:"output_url,omitempty"`
	DurationSec *float64   `json:"duration_sec,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

type Outcome struct {
	Status    Status
	Stage     string
	Err       error
	OutputURL string
	Duration  time.Duration
}

type Repo interface {
	Create(ctx context.Context, r *Run) error
	MarkRunning(ctx context.Context, id uuid.UUID) error
	Finish(ctx context.Context, id uuid.UUID, o Outcome) error
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	List(ctx context.Context, limit int) ([]Run, error)
}

type Generator interface {
	Generate(ctx context.Context, script podcast.Script, clipDir, outputPath string) (*podcast.Result, error)
}

// Publisher выкладывает готовый файл и отдаёт публичный URL.
type Publisher interface {
	Publish(ctx context.Context, runID, path string) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, err error, details string) error
}
