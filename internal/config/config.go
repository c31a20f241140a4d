package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type S3 struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	Secure     bool
	PublicHost string
}

func (s S3) Enabled() bool { return s.Endpoint != "" && s.Bucket != "" }

type Telegram struct {
	Token       string
	AdminChatID int64
}

func (t Telegram) Enabled() bool { return t.Token != "" && t.AdminChatID != 0 }

type Config struct {
	Port        string
	DatabaseURL string
	AuthSecret  string
	AuthTTL     time.Duration

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	ElevenLabsModelID string
	ElevenLabsRPM     int
	TTSConcurrency    int
	TTSTimeout        time.Duration
	Voices            string

	AudioDir    string
	OutputDir   string
	FFmpegPath  string
	FFprobePath string
	Reencode    bool
	QueueSize   int

	OpenAIAPIKey string
	OpenAIModel  string

	S3       S3
	Telegram Telegram
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AuthSecret:  os.Getenv("AUTH_SECRET"),

		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL: os.Getenv("ELEVENLABS_BASE_URL"),
		ElevenLabsModelID: getEnv("ELEVENLABS_MODEL_ID", "eleven_turbo_v2_5"),
		Voices:            os.Getenv("PODCAST_VOICES"),

		AudioDir:    getEnv("AUDIO_DIR", "audio-files"),
		OutputDir:   getEnv("OUTPUT_DIR", "podcasts"),
		FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
		Reencode:    getEnvBool("FFMPEG_REENCODE", false),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),

		S3: S3{
			Endpoint:   os.Getenv("S3_ENDPOINT"),
			AccessKey:  os.Getenv("S3_ACCESS_KEY"),
			SecretKey:  os.Getenv("S3_SECRET_KEY"),
			Bucket:     os.Getenv("S3_BUCKET"),
			Region:     os.Getenv("S3_REGION"),
			Secure:     getEnvBool("S3_SECURE", true),
			PublicHost: os.Getenv("S3_PUBLIC_HOST"),
		},
		Telegram: Telegram{
			Token: os.Getenv("TELEGRAM_NOTIFY_TOKEN"),
		},
	}

	var err error
	if cfg.ElevenLabsRPM, err = getEnvInt("ELEVENLABS_RPM", 0); err != nil {
		return nil, err
	}
	if cfg.TTSConcurrency, err = getEnvInt("TTS_CONCURRENCY", 2); err != nil {
		return nil, err
	}
	if cfg.TTSConcurrency < 1 {
		return nil, fmt.Errorf("TTS_CONCURRENCY must be >= 1, got %d", cfg.TTSConcurrency)
	}
	if cfg.QueueSize, err = getEnvInt("RUN_QUEUE_SIZE", 16); err != nil {
		return nil, err
	}
	if cfg.TTSTimeout, err = getEnvDuration("TTS_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}
	if cfg.AuthTTL, err = getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if v := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); v != "" {
		if cfg.Telegram.AdminChatID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.ElevenLabsAPIKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is not set")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
