package prompts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type memRepo struct {
	items map[string]string
}

func (m *memRepo) ListAll(ctx context.Context) ([]*Prompt, error) {
	var out []*Prompt
	for k, v := range m.items {
		out = append(out, &Prompt{Name: k, Prompt: v})
	}
	return out, nil
}

func (m *memRepo) Upsert(ctx context.Context, name, prompt string) (*Prompt, error) {
	m.items[name] = prompt
	return &Prompt{Name: name, Prompt: prompt}, nil
}

func (m *memRepo) GetByName(ctx context.Context, name string) (string, error) {
	p, ok := m.items[name]
	if !ok {
		return "", ErrNotFound
	}
	return p, nil
}

func TestUpdateAndList(t *testing.T) {
	repo := &memRepo{items: map[string]string{}}
	h := NewHandler(NewService(repo))

	r := chi.NewRouter()
	r.Get("/prompts", h.List)
	r.Put("/prompts/{name}", h.Update)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prompts", nil))
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list = %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/prompts/"+ScriptPrompt, strings.NewReader(`{"prompt":"  Hosts: {speakers}  "}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: code = %d body = %s", rec.Code, rec.Body)
	}
	if repo.items[ScriptPrompt] != "Hosts: {speakers}" {
		t.Errorf("stored = %q", repo.items[ScriptPrompt])
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/prompts/x", strings.NewReader(`{"prompt":" "}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank prompt: code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prompts", nil))
	if !strings.Contains(rec.Body.String(), `"name":"script_system"`) {
		t.Errorf("list = %s", rec.Body)
	}
}
