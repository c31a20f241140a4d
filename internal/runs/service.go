package runs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vovarama1992/podcast_maker/internal/podcast"
)

const defaultQueueSize = 16

type job struct {
	id     uuid.UUID
	script podcast.Script
	output string
}

// Service ставит прогоны в очередь и выполняет их по одному:
// лимит параллельности TTS общий на процесс, два прогона разом его бы превысили.
type Service struct {
	repo      Repo
	gen       Generator
	publisher Publisher
	notifier  Notifier
	audioDir  string
	outputDir string
	log       *zap.SugaredLogger

	jobs    chan job
	once    sync.Once
	wg      sync.WaitGroup
	mu      sync.Mutex // stopped + постановка в очередь
	stopped bool
}

type Options struct {
	AudioDir  string
	OutputDir string
	QueueSize int
	Publisher Publisher
	Notifier  Notifier
	Log       *zap.SugaredLogger
}

func NewService(repo Repo, gen Generator, opts Options) *Service {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	return &Service{
		repo:      repo,
		gen:       gen,
		publisher: opts.Publisher,
		notifier:  opts.Notifier,
		audioDir:  opts.AudioDir,
		outputDir: opts.OutputDir,
		log:       opts.Log,
		jobs:      make(chan job, opts.QueueSize),
	}
}

// Start запускает воркер. Останавливается по ctx: текущий прогон доживает,
// всё, что осталось в очереди, закрывается как failed. Wait дожидается этого.
func (s *Service) Start(ctx context.Context) {
	s.once.Do(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					s.drain(ctx)
					return
				case j := <-s.jobs:
					// при готовых обоих case select выбирает случайно
					if ctx.Err() != nil {
						s.abandon(ctx, j)
						s.drain(ctx)
						return
					}
					s.process(ctx, j)
				}
			}
		}()
	})
}

func (s *Service) drain(ctx context.Context) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	for {
		select {
		case j := <-s.jobs:
			s.abandon(ctx, j)
		default:
			return
		}
	}
}

// abandon закрывает прогон, который так и не стартовал.
func (s *Service) abandon(ctx context.Context, j job) {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	out := Outcome{Status: StatusFailed, Stage: string(StatusQueued), Err: fmt.Errorf("%w before run started", ErrStopped)}
	if err := s.repo.Finish(fctx, j.id, out); err != nil {
		s.log.Errorw("[runs] finish abandoned run", "id", j.id, "error", err)
		return
	}
	s.log.Warnw("[runs] abandoned on shutdown", "id", j.id)
}

func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) Submit(ctx context.Context, script podcast.Script) (*Run, error) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return nil, ErrStopped
	}

	id := uuid.New()
	run := &Run{
		ID:         id,
		Status:     StatusQueued,
		Lines:      len(script),
		Speakers:   script.Speakers(),
		OutputPath: filepath.Join(s.outputDir, id.String()+".mp3"),
	}
	if run.Speakers == nil {
		run.Speakers = []string{}
	}

	if err := s.repo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	if err := s.enqueue(job{id: id, script: script, output: run.OutputPath}); err != nil {
		if ferr := s.repo.Finish(ctx, id, Outcome{Status: StatusFailed, Err: err}); ferr != nil {
			s.log.Errorw("[runs] finish rejected run", "id", id, "error", ferr)
		}
		return nil, err
	}

	s.log.Infow("[runs] queued", "id", id, "lines", run.Lines)
	return run, nil
}

func (s *Service) enqueue(j job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	select {
	case s.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]Run, error) {
	return s.repo.List(ctx, limit)
}

func (s *Service) process(ctx context.Context, j job) {
	start := time.Now()
	log := s.log.With("id", j.id)

	if err := s.repo.MarkRunning(ctx, j.id); err != nil {
		log.Errorw("[runs] mark running", "error", err)
	}

	clipDir := filepath.Join(s.audioDir, j.id.String())
	res, err := s.gen.Generate(ctx, j.script, clipDir, j.output)

	out := s.outcome(ctx, j, res, err)
	// прерван остановкой сервиса — не авария, админа не дёргаем
	if out.Status == StatusFailed && ctx.Err() == nil {
		s.notify(ctx, j, out)
	}

	// статус пишем и после отмены ctx — иначе запись зависнет в running
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.Finish(fctx, j.id, out); err != nil {
		log.Errorw("[runs] finish", "error", err)
	}

	log.Infow("[runs] finished", "status", out.Status, "stage", out.Stage, "took", time.Since(start))
}

func (s *Service) outcome(ctx context.Context, j job, res *podcast.Result, err error) Outcome {
	switch {
	case err != nil && podcast.IsSoft(err):
		return Outcome{Status: StatusEmpty, Stage: string(podcast.FailedStage(err)), Err: err}
	case err != nil:
		return Outcome{Status: StatusFailed, Stage: string(podcast.FailedStage(err)), Err: err}
	}

	out := Outcome{Status: StatusDone, Stage: string(podcast.StageDone), Duration: res.Duration}
	if s.publisher == nil {
		return out
	}

	url, err := s.publisher.Publish(ctx, j.id.String(), res.Output)
	if err != nil {
		out.Status = StatusFailed
		out.Stage = "publishing"
		out.Err = fmt.Errorf("publish: %w", err)
		return out
	}
	out.OutputURL = url
	return out
}

func (s *Service) notify(ctx context.Context, j job, o Outcome) {
	if s.notifier == nil {
		return
	}
	details := fmt.Sprintf("run %s\nstage: %s\nlines: %d", j.id, o.Stage, len(j.script))
	var se *podcast.StageError
	if errors.As(o.Err, &se) && se.Position >= 0 {
		details += fmt.Sprintf("\nline: %d (%s)", se.Position, se.Speaker)
	}
	if err := s.notifier.Notify(ctx, o.Err, details); err != nil {
		s.log.Warnw("[runs] notify failed", "id", j.id, "error", err)
	}
}
