package prompts

import (
	"context"
	"errors"
	"time"
)

// ScriptPrompt — системный промпт генерации сценария по статье.
const ScriptPrompt = "script_system"

var ErrNotFound = errors.New("prompt not found")

type Repo interface {
	ListAll(ctx context.Context) ([]*Prompt, error)
	Upsert(ctx context.Context, name, prompt string) (*Prompt, error)
	GetByName(ctx context.Context, name string) (string, error)
}

type Service interface {
	ListAll(ctx context.Context) ([]*Prompt, error)
	Update(ctx context.Context, name, prompt string) (*Prompt, error)
	GetByName(ctx context.Context, name string) (string, error)
}

type Prompt struct {
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	UpdatedAt time.Time `json:"updated_at"`
}
