package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/podcast_maker/internal/ports"
)

type s3Service struct {
	client ports.S3Client
	now    func() time.Time
}

func NewS3Service(client ports.S3Client) ports.S3Service {
	return &s3Service{client: client, now: time.Now}
}

// ObjectKey — путь в бакете: podcasts/<дата>/<run>/<файл>
func (s *s3Service) ObjectKey(runID, filename string) string {
	date := s.now().Format("2006-01-02")
	clean := filepath.Base(filename)
	return fmt.Sprintf("podcasts/%s/%s/%s", date, runID, clean)
}

func (s *s3Service) Publish(ctx context.Context, runID, path string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("runID required")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	key := s.ObjectKey(runID, path)
	return s.client.PutObject(ctx, key, f, st.Size(), "audio/mpeg")
}
