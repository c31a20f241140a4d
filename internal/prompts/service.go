package prompts

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyPrompt = errors.New("prompt is empty")

type service struct {
	repo Repo
}

func NewService(repo Repo) Service {
	return &service{repo: repo}
}

func (s *service) ListAll(ctx context.Context) ([]*Prompt, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) Update(ctx context.Context, name, prompt string) (*Prompt, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	return s.repo.Upsert(ctx, name, prompt)
}

func (s *service) GetByName(ctx context.Context, name string) (string, error) {
	return s.repo.GetByName(ctx, name)
}
