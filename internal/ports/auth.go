package ports

import (
	"context"
	"time"
)

type AuthRepo interface {
	GetPassword(ctx context.Context) (string, error)
}

// Session — выданный оператору токен и момент, после которого он не принимается.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthService interface {
	Login(ctx context.Context, password string) (*Session, error)
	ValidateToken(ctx context.Context, token string) (bool, error)
}
