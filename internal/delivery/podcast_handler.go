package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Vovarama1992/podcast_maker/internal/podcast"
	"github.com/Vovarama1992/podcast_maker/internal/runs"
	"github.com/Vovarama1992/podcast_maker/internal/script"
)

const maxBodyBytes = 2 << 20

type RunService interface {
	Submit(ctx context.Context, sc podcast.Script) (*runs.Run, error)
	Get(ctx context.Context, id uuid.UUID) (*runs.Run, error)
	List(ctx context.Context, limit int) ([]runs.Run, error)
}

type ScriptGenerator interface {
	Generate(ctx context.Context, a script.Article) (podcast.Script, error)
}

type PodcastHandler struct {
	runs    RunService
	scripts ScriptGenerator // nil, если OpenAI не настроен
	voices  []string
	log     *logger.ZapLogger
}

func NewPodcastHandler(runs RunService, scripts ScriptGenerator, voices []string, log *logger.ZapLogger) *PodcastHandler {
	return &PodcastHandler{
		runs:    runs,
		scripts: scripts,
		voices:  voices,
		log:     log,
	}
}

// POST /podcasts — {"lines":[{"speaker":"...","text":"..."}]} или голый массив
func (h *PodcastHandler) CreateFromScript(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sc, err := script.Parse(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.submit(w, r, sc)
}

// POST /podcasts/from-article — {"title":"...","content_elements":[{"type":"text","content":"..."}]}
func (h *PodcastHandler) CreateFromArticle(w http.ResponseWriter, r *http.Request) {
	if h.scripts == nil {
		http.Error(w, "script generation is not configured", http.StatusServiceUnavailable)
		return
	}

	var a script.Article
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&a); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	sc, err := h.scripts.Generate(r.Context(), a)
	switch {
	case errors.Is(err, script.ErrEmptyArticle):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.log.Log(logger.LogEntry{Level: "error", Message: "script generation failed", Error: err})
		http.Error(w, "script generation failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.submit(w, r, sc)
}

func (h *PodcastHandler) submit(w http.ResponseWriter, r *http.Request, sc podcast.Script) {
	run, err := h.runs.Submit(r.Context(), sc)
	switch {
	case errors.Is(err, runs.ErrQueueFull), errors.Is(err, runs.ErrStopped):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		h.log.Log(logger.LogEntry{Level: "error", Message: "submit run failed", Error: err})
		http.Error(w, "failed to create run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Log(logger.LogEntry{Level: "info", Message: "podcast run queued: " + run.ID.String()})
	writeJSON(w, http.StatusAccepted, run)
}

// GET /podcasts/{id}
func (h *PodcastHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	run, err := h.runs.Get(r.Context(), id)
	switch {
	case errors.Is(err, runs.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
		return
	case err != nil:
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Error: err})
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// GET /podcasts?limit=N
func (h *PodcastHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := h.runs.List(r.Context(), limit)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Error: err})
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []runs.Run{}
	}

	writeJSON(w, http.StatusOK, list)
}

// GET /voices
func (h *PodcastHandler) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"speakers": h.voices})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
