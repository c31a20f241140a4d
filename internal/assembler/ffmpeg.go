package assembler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Vovarama1992/podcast_maker/internal/clips"
	"github.com/Vovarama1992/podcast_maker/internal/podcast"
)

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// FFmpeg склеивает mp3-клипы через concat demuxer.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
	reencode    bool
	cmd         CommandRunner
	log         *zap.SugaredLogger
}

type Option func(*FFmpeg)

func WithCommandRunner(r CommandRunner) Option {
	return func(f *FFmpeg) { f.cmd = r }
}

// WithTempDir — где создавать scratch-каталог со списком входов.
func WithTempDir(dir string) Option {
	return func(f *FFmpeg) { f.tempDir = dir }
}

// WithReencode: перекодировать в libmp3lame вместо -c copy
// (нужно, если у клипов разные параметры потока).
func WithReencode(v bool) Option {
	return func(f *FFmpeg) { f.reencode = v }
}

func WithFFprobe(path string) Option {
	return func(f *FFmpeg) { f.ffprobePath = path }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(f *FFmpeg) { f.log = log }
}

func New(ffmpegPath string, opts ...Option) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	f := &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: "ffprobe",
		cmd:         execRunner{},
		log:         zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Assemble собирает все клипы dir в outputPath в порядке имён.
// Пишет во временный файл рядом и переименовывает, так что при ошибке
// склеенного файла нет. Пустой каталог → podcast.ErrNoClipsFound.
func (f *FFmpeg) Assemble(ctx context.Context, dir, outputPath string) error {
	files, err := clips.List(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", podcast.ErrNoClipsFound, dir)
		}
		return fmt.Errorf("%w: list %s: %w", podcast.ErrStorage, dir, err)
	}
	if len(files) == 0 {
		f.log.Warnw("[assembler] no audio files to merge", "dir", dir)
		return fmt.Errorf("%w in %s", podcast.ErrNoClipsFound, dir)
	}

	f.log.Infow("[assembler] merging", "files", len(files), "output", outputPath)

	scratch, err := os.MkdirTemp(f.tempDir, "podcast-merge-*")
	if err != nil {
		return fmt.Errorf("%w: scratch dir: %w", podcast.ErrStorage, err)
	}
	defer os.RemoveAll(scratch)

	listPath := filepath.Join(scratch, "inputs.txt")
	if err := writeConcatList(listPath, files); err != nil {
		return fmt.Errorf("%w: concat list: %w", podcast.ErrStorage, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("%w: output dir: %w", podcast.ErrStorage, err)
	}

	tmpOut := filepath.Join(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".tmp"+clips.Ext)
	defer os.Remove(tmpOut)

	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-f", "concat", "-safe", "0", "-i", listPath}
	if f.reencode {
		args = append(args, "-c:a", "libmp3lame", "-q:a", "2")
	} else {
		args = append(args, "-c", "copy")
	}
	args = append(args, tmpOut)

	start := time.Now()
	_, stderr, err := f.cmd.Run(ctx, f.ffmpegPath, args...)
	if err != nil {
		return fmt.Errorf("%w: ffmpeg: %w: %s", podcast.ErrAssembly, err, tail(stderr, 512))
	}

	st, err := os.Stat(tmpOut)
	if err != nil || st.Size() == 0 {
		return fmt.Errorf("%w: ffmpeg produced no output", podcast.ErrAssembly)
	}

	if err := os.Rename(tmpOut, outputPath); err != nil {
		return fmt.Errorf("%w: move output: %w", podcast.ErrStorage, err)
	}

	f.log.Infow("[assembler] merged audio saved", "output", outputPath, "size", humanize.Bytes(uint64(st.Size())), "took", time.Since(start))
	return nil
}

// Duration — длительность файла по ffprobe.
func (f *FFmpeg) Duration(ctx context.Context, path string) (time.Duration, error) {
	out, _, err := f.cmd.Run(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// формат concat demuxer: file '<path>', одинарные кавычки экранируются как '\''
func writeConcatList(path string, files []string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			out.Close()
			return err
		}
		escaped := strings.ReplaceAll(filepath.ToSlash(abs), "'", `'\''`)
		fmt.Fprintf(w, "file '%s'\n", escaped)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		s = "..." + s[len(s)-n:]
	}
	return s
}
