package clips

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Vovarama1992/podcast_maker/internal/podcast"
)

// Store пишет клипы одного прогона в свой каталог.
// Write безопасен для параллельных вызовов: у каждой реплики своё имя файла.
type Store struct {
	dir string
	log *zap.SugaredLogger
}

func NewStore(dir string, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{dir: dir, log: log}
}

func Factory(log *zap.SugaredLogger) podcast.StoreFactory {
	return func(dir string) podcast.ClipStore {
		return NewStore(dir, log)
	}
}

func (s *Store) Dir() string { return s.dir }

// Prepare: снести каталог, если есть, и создать пустой.
func (s *Store) Prepare() error {
	if s.dir == "" {
		return fmt.Errorf("%w: empty clip dir", podcast.ErrStorage)
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("%w: purge %s: %w", podcast.ErrStorage, s.dir, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", podcast.ErrStorage, s.dir, err)
	}
	s.log.Infow("[clips] dir ready", "dir", s.dir)
	return nil
}

// Write сливает поток в <dir>/<имя>.part и переименовывает по завершении.
// При любой ошибке недописанный файл удаляется. Поток закрывается всегда.
func (s *Store) Write(ctx context.Context, clip podcast.SynthesizedClip) (string, error) {
	if clip.Audio == nil {
		return "", fmt.Errorf("%w: nil audio stream", podcast.ErrInvalidInput)
	}
	defer clip.Audio.Close()

	if clip.Position < 0 || clip.Position >= MaxLines {
		return "", fmt.Errorf("%w: position %d out of range", podcast.ErrInvalidInput, clip.Position)
	}

	path := filepath.Join(s.dir, FileName(clip.Position, clip.Speaker))
	part := path + partSuffix

	out, err := os.OpenFile(part, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %w", podcast.ErrStorage, part, err)
	}

	src := &ctxReader{ctx: ctx, r: clip.Audio}
	n, err := io.Copy(out, src)
	closeErr := out.Close()

	switch {
	case src.err != nil:
		os.Remove(part)
		return "", fmt.Errorf("%w: read audio stream: %w", podcast.ErrService, src.err)
	case err != nil:
		os.Remove(part)
		return "", fmt.Errorf("%w: write %s: %w", podcast.ErrStorage, part, err)
	case closeErr != nil:
		os.Remove(part)
		return "", fmt.Errorf("%w: close %s: %w", podcast.ErrStorage, part, closeErr)
	case n == 0:
		os.Remove(part)
		return "", fmt.Errorf("%w: empty audio for line %d", podcast.ErrService, clip.Position)
	}

	if err := os.Rename(part, path); err != nil {
		os.Remove(part)
		return "", fmt.Errorf("%w: rename %s: %w", podcast.ErrStorage, part, err)
	}

	s.log.Infow("[clips] written", "speaker", clip.Speaker, "path", path, "size", humanize.Bytes(uint64(n)))
	return path, nil
}

// ctxReader обрывает чтение при отмене и запоминает ошибку источника,
// чтобы отличить сбой провайдера от сбоя диска.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
	err error
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		c.err = err
		return 0, err
	}
	n, err := c.r.Read(p)
	if err == io.EOF {
		// источник мог доиграть поток, не глядя на отмену
		if cerr := c.ctx.Err(); cerr != nil {
			c.err = cerr
			return n, cerr
		}
	}
	if err != nil && err != io.EOF {
		c.err = err
	}
	return n, err
}
