package podcast

import (
	"context"
	"io"
	"time"
)

// Synthesizer — внешний TTS: один вызов на реплику, без ретраев.
type Synthesizer interface {
	Synthesize(ctx context.Context, voiceID, text string) (io.ReadCloser, error)
}

// ClipStore — каталог клипов одного прогона.
type ClipStore interface {
	Dir() string
	Prepare() error
	Write(ctx context.Context, clip SynthesizedClip) (string, error)
}

type StoreFactory func(dir string) ClipStore

// Assembler склеивает клипы каталога в один файл в порядке имён.
type Assembler interface {
	Assemble(ctx context.Context, dir, outputPath string) error
}

type DurationProber interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}
