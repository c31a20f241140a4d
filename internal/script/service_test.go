package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Vovarama1992/podcast_maker/internal/podcast"
	"github.com/Vovarama1992/podcast_maker/internal/prompts"
)

type fakeCompleter struct {
	system, user string
	reply        string
	err          error
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}

func TestExtractContent(t *testing.T) {
	got := ExtractContent([]ContentElement{
		{Type: "text", Content: "First paragraph."},
		{Type: "image", Content: "http://img"},
		{Type: "text", Content: "  "},
		{Type: "text", Content: "Second."},
	})
	if got != "First paragraph. Second." {
		t.Errorf("ExtractContent = %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		lines   int
		wantErr error
	}{
		{name: "wrapped", raw: `{"lines":[{"speaker":"Sascha","text":"Hi"},{"speaker":"Marina","text":"Hello"}]}`, lines: 2},
		{name: "bare array", raw: ` [{"speaker":"Sascha","text":"Hi"}] `, lines: 1},
		{name: "empty list", raw: `{"lines":[]}`, lines: 0},
		{name: "empty body", raw: ``, wantErr: podcast.ErrInvalidInput},
		{name: "broken json", raw: `{"lines":[`, wantErr: podcast.ErrInvalidInput},
		{name: "missing text", raw: `[{"speaker":"Sascha"}]`, wantErr: podcast.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Parse([]byte(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(sc) != tt.lines {
				t.Errorf("lines = %d, want %d", len(sc), tt.lines)
			}
			for i, l := range sc {
				if l.Position != i {
					t.Errorf("line %d position %d", i, l.Position)
				}
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	llm := &fakeCompleter{reply: `{"lines":[{"speaker":"Sascha","text":"Welcome"},{"speaker":"Marina","text":"Today we talk"}]}`}
	svc := NewService(llm, []string{"Marina", "Sascha"}, nil)

	sc, err := svc.Generate(context.Background(), Article{
		Title:    "Big news",
		Elements: []ContentElement{{Type: "text", Content: "Something happened."}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(sc) != 2 || sc[1].Speaker != "Marina" {
		t.Errorf("script = %+v", sc)
	}
	if !strings.Contains(llm.system, "Marina, Sascha") {
		t.Errorf("system prompt lacks speakers: %q", llm.system)
	}
	if !strings.HasPrefix(llm.user, "Title: Big news") || !strings.Contains(llm.user, "Something happened.") {
		t.Errorf("user prompt = %q", llm.user)
	}
}

func TestGeneratePropagatesErrors(t *testing.T) {
	article := Article{Elements: []ContentElement{{Type: "text", Content: "x"}}}

	llmErr := errors.New("status code: 429")
	svc := NewService(&fakeCompleter{err: llmErr}, []string{"Alex"}, nil)
	if _, err := svc.Generate(context.Background(), article); !errors.Is(err, llmErr) {
		t.Errorf("llm error swallowed: %v", err)
	}

	svc = NewService(&fakeCompleter{reply: "not json"}, []string{"Alex"}, nil)
	if _, err := svc.Generate(context.Background(), article); !errors.Is(err, podcast.ErrInvalidInput) {
		t.Errorf("bad output: %v", err)
	}

	if _, err := svc.Generate(context.Background(), Article{}); !errors.Is(err, ErrEmptyArticle) {
		t.Errorf("empty article: %v", err)
	}
}

type fakePrompts struct {
	prompt string
	err    error
}

func (f fakePrompts) GetByName(ctx context.Context, name string) (string, error) {
	if name != prompts.ScriptPrompt {
		return "", prompts.ErrNotFound
	}
	return f.prompt, f.err
}

func TestSystemPromptSource(t *testing.T) {
	article := Article{Elements: []ContentElement{{Type: "text", Content: "x"}}}
	reply := `[{"speaker":"Alex","text":"hi"}]`

	tests := []struct {
		name string
		src  fakePrompts
		want string
	}{
		{name: "stored", src: fakePrompts{prompt: "Hosts: {speakers}. JSON only."}, want: "Hosts: Alex, Marina. JSON only."},
		{name: "missing", src: fakePrompts{err: prompts.ErrNotFound}, want: "hosted by Alex, Marina"},
		{name: "db down", src: fakePrompts{err: errors.New("conn refused")}, want: "hosted by Alex, Marina"},
		{name: "blank", src: fakePrompts{prompt: "  "}, want: "hosted by Alex, Marina"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeCompleter{reply: reply}
			svc := NewService(llm, []string{"Alex", "Marina"}, nil)
			svc.SetPromptSource(tt.src)

			if _, err := svc.Generate(context.Background(), article); err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if !strings.Contains(llm.system, tt.want) {
				t.Errorf("system = %q, want to contain %q", llm.system, tt.want)
			}
			if strings.Contains(llm.system, "{speakers}") {
				t.Errorf("placeholder left in %q", llm.system)
			}
		})
	}
}
