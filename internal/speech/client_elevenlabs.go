package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Vovarama1992/podcast_maker/internal/podcast"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultModelID = "eleven_turbo_v2_5"
)

type Config struct {
	APIKey  string
	BaseURL string
	ModelID string
	// RequestsPerMinute: 0 — без ограничения частоты (остаётся только лимит параллельности).
	RequestsPerMinute int
	HTTPClient        *http.Client
	Log               *zap.SugaredLogger
}

// ElevenLabsClient создаётся один раз на процесс и дальше не меняется.
type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	modelID string
	httpCli *http.Client
	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

func NewElevenLabsClient(cfg Config) (*ElevenLabsClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY not set")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop().Sugar()
	}

	c := &ElevenLabsClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		modelID: cfg.ModelID,
		httpCli: cfg.HTTPClient,
		log:     cfg.Log,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c, nil
}

type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// TEXT → SPEECH. Возвращает тело ответа (audio/mpeg), закрывает вызывающий.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, voiceID, text string) (io.ReadCloser, error) {
	if strings.TrimSpace(voiceID) == "" {
		return nil, fmt.Errorf("%w: empty voice id", podcast.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", podcast.ErrInvalidInput)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", podcast.ErrService, err)
		}
	}

	payload, err := json.Marshal(ttsRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", podcast.ErrInvalidInput, err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", podcast.ErrInvalidInput, err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", podcast.ErrService, err)
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.log.Errorw("[tts] elevenlabs error", "status", resp.StatusCode, "voice", voiceID, "body", string(b))
		return nil, fmt.Errorf("%w: elevenlabs status %d: %s", podcast.ErrService, resp.StatusCode, describeStatus(resp.StatusCode, b))
	}

	return resp.Body, nil
}

type apiError struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

func describeStatus(code int, body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Detail.Message != "" {
		return e.Detail.Message
	}

	switch code {
	case http.StatusUnauthorized:
		return "invalid API key"
	case http.StatusTooManyRequests:
		return "rate limit or concurrency limit exceeded"
	case http.StatusUnprocessableEntity:
		return "request rejected: " + strings.TrimSpace(string(body))
	}
	return strings.TrimSpace(string(body))
}
