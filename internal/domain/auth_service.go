package domain

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Vovarama1992/podcast_maker/internal/ports"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	tokenSubject    = "podcast-operator"
)

var ErrInvalidPassword = errors.New("invalid password")

type authService struct {
	repo   ports.AuthRepo
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(repo ports.AuthRepo, secret string, ttl time.Duration) ports.AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &authService{
		repo:   repo,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Login выдаёт токен вида <unix-срок>.<hmac>.
func (s *authService) Login(ctx context.Context, password string) (*ports.Session, error) {
	if s.secret == "" {
		return nil, errors.New("AUTH_SECRET not set")
	}
	realPass, err := s.repo.GetPassword(ctx)
	if err != nil {
		return nil, err
	}
	if realPass == "" || subtle.ConstantTimeCompare([]byte(password), []byte(realPass)) != 1 {
		return nil, ErrInvalidPassword
	}

	exp := s.now().Add(s.ttl).Truncate(time.Second)
	expRaw := strconv.FormatInt(exp.Unix(), 10)
	return &ports.Session{
		Token:     expRaw + "." + s.sign(expRaw),
		ExpiresAt: exp,
	}, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (bool, error) {
	if s.secret == "" {
		return false, errors.New("AUTH_SECRET not set")
	}

	expRaw, sig, ok := strings.Cut(token, ".")
	if !ok {
		return false, nil
	}
	exp, err := strconv.ParseInt(expRaw, 10, 64)
	if err != nil {
		return false, nil
	}
	if !s.now().Before(time.Unix(exp, 0)) {
		return false, nil
	}
	return hmac.Equal([]byte(sig), []byte(s.sign(expRaw))), nil
}

func (s *authService) sign(expRaw string) string {
	h := hmac.New(sha256.New, []byte(s.secret))
	h.Write([]byte(tokenSubject + ":" + expRaw))
	return hex.EncodeToString(h.Sum(nil))
}
