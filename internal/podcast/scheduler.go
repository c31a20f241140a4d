package podcast

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 2

// Scheduler синтезирует все реплики, держа не больше limit запросов к TTS одновременно.
// Лимит — требование провайдера: сверх него запросы отбиваются.
type Scheduler struct {
	resolver *VoiceResolver
	tts      Synthesizer
	limit    int
	timeout  time.Duration
	log      *zap.SugaredLogger
}

func NewScheduler(resolver *VoiceResolver, tts Synthesizer, limit int, timeout time.Duration, log *zap.SugaredLogger) *Scheduler {
	if limit < 1 {
		limit = DefaultConcurrency
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scheduler{
		resolver: resolver,
		tts:      tts,
		limit:    limit,
		timeout:  timeout,
		log:      log,
	}
}

func (s *Scheduler) Limit() int { return s.limit }

// Run возвращает пути клипов по позициям. Первая ошибка валит весь батч:
// новые задачи не стартуют, уже запущенные доживают, их результат выбрасывается.
func (s *Scheduler) Run(ctx context.Context, script Script, store ClipStore) ([]string, error) {
	paths := make([]string, len(script))

	// gctx — только для допуска новых задач; запущенные живут на ctx
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, line := range script {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			path, err := s.runLine(ctx, line, store)
			if err != nil {
				s.log.Errorw("[podcast] line failed", "position", line.Position, "speaker", line.Speaker, "error", err)
				return err
			}
			paths[i] = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// отмена снаружи могла оставить задачи незапущенными
	for i, p := range paths {
		if p == "" {
			if err := ctx.Err(); err != nil {
				return nil, stageError(StageSynthesizing, err)
			}
			return nil, lineError(StageSynthesizing, script[i], fmt.Errorf("clip was not written"))
		}
	}
	return paths, nil
}

func (s *Scheduler) runLine(ctx context.Context, line ScriptLine, store ClipStore) (string, error) {
	if err := line.Validate(); err != nil {
		return "", lineError(StageSynthesizing, line, err)
	}

	voice, err := s.resolver.Resolve(line.Speaker)
	if err != nil {
		return "", lineError(StageSynthesizing, line, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	audio, err := s.tts.Synthesize(ctx, voice, line.Text)
	if err != nil {
		return "", lineError(StageSynthesizing, line, err)
	}

	// поток закрывает store
	path, err := store.Write(ctx, SynthesizedClip{
		Position: line.Position,
		Speaker:  line.Speaker,
		Audio:    audio,
	})
	if err != nil {
		return "", lineError(StageSynthesizing, line, err)
	}

	s.log.Infow("[podcast] clip ready", "position", line.Position, "speaker", line.Speaker, "path", path, "took", time.Since(start))
	return path, nil
}
