package clips

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/podcast_maker/internal/podcast"
)

func TestFileNameSortsInScriptOrder(t *testing.T) {
	var names []string
	for _, pos := range []int{10, 2, 0, 100, 1, 9, 11} {
		names = append(names, FileName(pos, "Sascha"))
	}
	sort.Strings(names)

	var got []int
	for _, n := range names {
		pos, _, ok := ParseFileName(n)
		if !ok {
			t.Fatalf("ParseFileName(%q) failed", n)
		}
		got = append(got, pos)
	}
	want := []int{0, 1, 2, 9, 10, 11, 100}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted positions = %v, want %v", got, want)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		pos     int
		speaker string
		want    string
	}{
		{0, "Sascha", "00000_Sascha.mp3"},
		{1, "Marina", "00001_Marina.mp3"},
		{42, "Dr. Who", "00042_Dr--Who.mp3"},
		{7, "a_b/c", "00007_a-b-c.mp3"},
		{3, "", "00003_speaker.mp3"},
	}
	for _, tt := range tests {
		if got := FileName(tt.pos, tt.speaker); got != tt.want {
			t.Errorf("FileName(%d, %q) = %q, want %q", tt.pos, tt.speaker, got, tt.want)
		}
	}
}

func TestParseFileName(t *testing.T) {
	pos, speaker, ok := ParseFileName("00012_Marina.mp3")
	if !ok || pos != 12 || speaker != "Marina" {
		t.Errorf("got %d %q %v", pos, speaker, ok)
	}

	for _, bad := range []string{
		"12_Marina.mp3",
		"00012_Marina.wav",
		"00012_Marina.mp3.part",
		"00012.mp3",
		"abcde_Marina.mp3",
		".podcast.mp3.tmp.mp3",
	} {
		if _, _, ok := ParseFileName(bad); ok {
			t.Errorf("ParseFileName(%q) accepted", bad)
		}
	}
}

func TestPrepareCreatesEmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio-files")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "00000_Old.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(dir, nil)
	if err := s.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dir not empty after Prepare: %d entries", len(entries))
	}
}

func TestPrepareFailsOnBadPath(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(filepath.Join(file, "sub"), nil)
	if err := s.Prepare(); !errors.Is(err, podcast.ErrStorage) {
		t.Errorf("err = %v, want ErrStorage", err)
	}
}

type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func TestWrite(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}

	src := &trackingReader{Reader: strings.NewReader("audio-bytes")}
	path, err := s.Write(context.Background(), podcast.SynthesizedClip{Position: 2, Speaker: "Sascha", Audio: src})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "00002_Sascha.mp3" {
		t.Errorf("path = %s", path)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "audio-bytes" {
		t.Errorf("content = %q", b)
	}
	if !src.closed {
		t.Error("stream not closed")
	}
}

type failingReader struct {
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func (r *failingReader) Close() error { return nil }

func TestWriteRemovesPartialFileOnStreamError(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, nil)
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}

	_, err := s.Write(context.Background(), podcast.SynthesizedClip{Position: 0, Speaker: "Alex", Audio: &failingReader{}})
	if !errors.Is(err, podcast.ErrService) {
		t.Fatalf("err = %v, want ErrService", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("partial file left behind: %v", entries)
	}
}

func TestWriteRespectsCanceledContext(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, nil)
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Write(ctx, podcast.SynthesizedClip{Position: 0, Speaker: "Alex", Audio: io.NopCloser(strings.NewReader("x"))})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("files left behind: %v", entries)
	}
}

// lateEOFReader отдаёт байты и заканчивает поток уже после дедлайна, не глядя на ctx.
type lateEOFReader struct {
	ctx  context.Context
	sent bool
}

func (r *lateEOFReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "ID3"), nil
	}
	<-r.ctx.Done()
	return 0, io.EOF
}

func (r *lateEOFReader) Close() error { return nil }

func TestWriteRejectsStreamFinishedAfterDeadline(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, nil)
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Write(ctx, podcast.SynthesizedClip{Position: 0, Speaker: "Alex", Audio: &lateEOFReader{ctx: ctx}})
	if !errors.Is(err, podcast.ErrService) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want ErrService wrapping DeadlineExceeded", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("files left behind: %v", entries)
	}
}

func TestWriteRejectsEmptyAudioAndDuplicates(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}

	_, err := s.Write(context.Background(), podcast.SynthesizedClip{Position: 0, Speaker: "Alex", Audio: io.NopCloser(strings.NewReader(""))})
	if !errors.Is(err, podcast.ErrService) {
		t.Errorf("empty audio: err = %v", err)
	}

	_, err = s.Write(context.Background(), podcast.SynthesizedClip{Position: MaxLines, Speaker: "Alex", Audio: io.NopCloser(strings.NewReader("x"))})
	if !errors.Is(err, podcast.ErrInvalidInput) {
		t.Errorf("out of range: err = %v", err)
	}
}

func TestConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, nil)
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := io.NopCloser(strings.NewReader(fmt.Sprintf("clip-%d", i)))
			if _, err := s.Write(context.Background(), podcast.SynthesizedClip{Position: i, Speaker: "Alex", Audio: body}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Write: %v", err)
	}

	paths, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != n {
		t.Fatalf("List = %d files, want %d", len(paths), n)
	}
	for i, p := range paths {
		b, _ := os.ReadFile(p)
		if string(b) != fmt.Sprintf("clip-%d", i) {
			t.Errorf("file %d = %q", i, b)
		}
	}
}

func TestListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"00001_B.mp3", "00000_A.mp3", "notes.txt", "00002_C.mp3.part", "cover.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "00000_A.mp3" || filepath.Base(paths[1]) != "00001_B.mp3" {
		t.Errorf("List = %v", paths)
	}
}
