package ports

import (
	"context"
	"io"
)

// S3Client стримит объект в бакет; size нужен minio, чтобы не буферизовать
// подкаст целиком.
type S3Client interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (publicURL string, err error)
}

type S3Service interface {
	ObjectKey(runID, filename string) string
	// Publish — загружает готовый подкаст и возвращает публичный URL
	Publish(ctx context.Context, runID, path string) (string, error)
}
