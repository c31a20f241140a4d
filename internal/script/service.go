package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Vovarama1992/podcast_maker/internal/podcast"
	"github.com/Vovarama1992/podcast_maker/internal/prompts"
)

var ErrEmptyArticle = errors.New("article has no text content")

// {speakers} заменяется списком ведущих
const DefaultSystemPrompt = `You write scripts for a news podcast hosted by {speakers}.
Turn the article into a lively, conversational dialogue between the hosts.
Open with a short welcome, cover the key facts, and close with a sign-off.
Use only these speaker names: {speakers}.
Answer with a JSON object: {"lines": [{"speaker": "<name>", "text": "<what they say>"}]}.`

const speakersPlaceholder = "{speakers}"

type Service struct {
	llm      Completer
	prompts  PromptSource
	speakers []string
	log      *zap.SugaredLogger
}

func NewService(llm Completer, speakers []string, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{llm: llm, speakers: speakers, log: log}
}

// SetPromptSource — системный промпт из БД вместо встроенного.
func (s *Service) SetPromptSource(src PromptSource) {
	s.prompts = src
}

func (s *Service) systemPrompt(ctx context.Context) string {
	tmpl := DefaultSystemPrompt
	if s.prompts != nil {
		p, err := s.prompts.GetByName(ctx, prompts.ScriptPrompt)
		switch {
		case err == nil && strings.TrimSpace(p) != "":
			tmpl = p
		case err != nil && !errors.Is(err, prompts.ErrNotFound):
			s.log.Warnw("[script] prompt lookup failed, using default", "error", err)
		}
	}
	return strings.ReplaceAll(tmpl, speakersPlaceholder, strings.Join(s.speakers, ", "))
}

// ExtractContent склеивает текстовые элементы статьи через пробел.
func ExtractContent(elements []ContentElement) string {
	var parts []string
	for _, el := range elements {
		if el.Type != "text" {
			continue
		}
		if s := strings.TrimSpace(el.Content); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Generate — сценарий по статье. Любая ошибка генерации возвращается наверх.
func (s *Service) Generate(ctx context.Context, a Article) (podcast.Script, error) {
	content := ExtractContent(a.Elements)
	if content == "" {
		return nil, ErrEmptyArticle
	}

	system := s.systemPrompt(ctx)
	user := content
	if a.Title != "" {
		user = "Title: " + a.Title + "\n\n" + content
	}

	s.log.Infow("[script] generating", "title", a.Title, "chars", len(content))

	raw, err := s.llm.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	sc, err := Parse([]byte(raw))
	if err != nil {
		s.log.Errorw("[script] bad model output", "error", err, "raw", raw)
		return nil, err
	}

	s.log.Infow("[script] generated", "lines", len(sc))
	return sc, nil
}

// Parse принимает либо {"lines": [...]}, либо голый массив [{speaker, text}].
func Parse(raw []byte) (podcast.Script, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty script", podcast.ErrInvalidInput)
	}

	var entries []podcast.Entry
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%w: decode script: %w", podcast.ErrInvalidInput, err)
		}
	} else {
		var wrapped struct {
			Lines []podcast.Entry `json:"lines"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: decode script: %w", podcast.ErrInvalidInput, err)
		}
		entries = wrapped.Lines
	}

	return podcast.NewScript(entries)
}
