package podcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	scheduler *Scheduler
	newStore  StoreFactory
	assembler Assembler
	prober    DurationProber
	log       *zap.SugaredLogger
}

func NewService(
	scheduler *Scheduler,
	newStore StoreFactory,
	assembler Assembler,
	prober DurationProber,
	log *zap.SugaredLogger,
) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		scheduler: scheduler,
		newStore:  newStore,
		assembler: assembler,
		prober:    prober,
		log:       log,
	}
}

// Generate — один полный прогон: каталог клипов → синтез → склейка.
func (s *Service) Generate(ctx context.Context, script Script, clipDir, outputPath string) (*Result, error) {
	return s.NewRun(script, clipDir, outputPath).Execute(ctx)
}

func (s *Service) NewRun(script Script, clipDir, outputPath string) *Run {
	return &Run{
		svc:    s,
		script: script,
		store:  s.newStore(clipDir),
		output: outputPath,
		stage:  StageIdle,
	}
}

// Run — одноразовый прогон. Повторный Execute запрещён.
type Run struct {
	svc    *Service
	script Script
	store  ClipStore
	output string

	mu    sync.Mutex
	stage Stage
	err   error
}

func (r *Run) Stage() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Run) enter(next Stage) {
	r.mu.Lock()
	r.stage = next
	r.mu.Unlock()
	r.svc.log.Infow("[podcast] stage", "stage", next, "dir", r.store.Dir())
}

func (r *Run) fail(stage Stage, err error) error {
	var se *StageError
	if !errors.As(err, &se) {
		err = stageError(stage, err)
	}
	r.mu.Lock()
	r.stage = StageFailed
	r.err = err
	r.mu.Unlock()

	if IsSoft(err) {
		r.svc.log.Warnw("[podcast] nothing to assemble", "dir", r.store.Dir())
	} else {
		r.svc.log.Errorw("[podcast] run failed", "stage", stage, "error", err)
	}
	return err
}

func (r *Run) Execute(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if r.stage != StageIdle {
		st := r.stage
		r.mu.Unlock()
		return nil, fmt.Errorf("run already used (stage %s)", st)
	}
	r.stage = StagePreparing
	r.mu.Unlock()

	start := time.Now()
	r.svc.log.Infow("[podcast] run start", "lines", len(r.script), "dir", r.store.Dir(), "output", r.output, "concurrency", r.svc.scheduler.Limit())

	// каталог должен быть пуст до старта любой задачи синтеза
	if err := r.store.Prepare(); err != nil {
		return nil, r.fail(StagePreparing, err)
	}

	r.enter(StageSynthesizing)
	clips, err := r.svc.scheduler.Run(ctx, r.script, r.store)
	if err != nil {
		return nil, r.fail(StageSynthesizing, err)
	}

	r.enter(StageAssembling)
	if err := r.svc.assembler.Assemble(ctx, r.store.Dir(), r.output); err != nil {
		err = r.fail(StageAssembling, err)
		if IsSoft(err) {
			return &Result{}, err
		}
		return nil, err
	}

	res := &Result{Clips: clips, Output: r.output}
	if r.svc.prober != nil {
		d, err := r.svc.prober.Duration(ctx, r.output)
		if err != nil {
			r.svc.log.Warnw("[podcast] probe duration failed", "output", r.output, "error", err)
		} else {
			res.Duration = d
		}
	}

	r.enter(StageDone)
	r.svc.log.Infow("[podcast] run done", "clips", len(clips), "output", r.output, "duration", res.Duration, "took", time.Since(start))
	return res, nil
}
