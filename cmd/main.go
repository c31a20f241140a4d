package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/podcast_maker/internal/assembler"
	"github.com/Vovarama1992/podcast_maker/internal/clips"
	"github.com/Vovarama1992/podcast_maker/internal/config"
	"github.com/Vovarama1992/podcast_maker/internal/delivery"
	"github.com/Vovarama1992/podcast_maker/internal/domain"
	"github.com/Vovarama1992/podcast_maker/internal/error_notificator"
	"github.com/Vovarama1992/podcast_maker/internal/infra"
	"github.com/Vovarama1992/podcast_maker/internal/podcast"
	"github.com/Vovarama1992/podcast_maker/internal/prompts"
	"github.com/Vovarama1992/podcast_maker/internal/runs"
	"github.com/Vovarama1992/podcast_maker/internal/script"
	"github.com/Vovarama1992/podcast_maker/internal/speech"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / DB INIT
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("db ping failed: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()
	zl := logger.NewZapLogger(sugar)

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	var publisher runs.Publisher
	if cfg.S3.Enabled() {
		s3Client, err := infra.NewS3Client(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		publisher = domain.NewS3Service(s3Client)
	} else {
		sugar.Warn("[main] S3 not configured, podcasts stay on local disk")
	}

	var notifier runs.Notifier
	if cfg.Telegram.Enabled() {
		tg, err := error_notificator.NewInfra(cfg.Telegram.Token)
		if err != nil {
			log.Fatalf("failed to init telegram notifier: %v", err)
		}
		notifier = error_notificator.NewService(tg, cfg.Telegram.AdminChatID, "podcast_maker", sugar)
	}

	// =========================================================================
	// CLIENTS (TTS / LLM / FFMPEG)
	// =========================================================================

	ttsClient, err := speech.NewElevenLabsClient(speech.Config{
		APIKey:            cfg.ElevenLabsAPIKey,
		BaseURL:           cfg.ElevenLabsBaseURL,
		ModelID:           cfg.ElevenLabsModelID,
		RequestsPerMinute: cfg.ElevenLabsRPM,
		Log:               sugar,
	})
	if err != nil {
		log.Fatalf("failed to init elevenlabs: %v", err)
	}

	voices := podcast.DefaultVoices()
	if cfg.Voices != "" {
		if voices, err = podcast.ParseVoiceMapping(cfg.Voices); err != nil {
			log.Fatalf("PODCAST_VOICES: %v", err)
		}
	}
	resolver := podcast.NewVoiceResolver(voices)

	ffmpeg := assembler.New(cfg.FFmpegPath,
		assembler.WithFFprobe(cfg.FFprobePath),
		assembler.WithReencode(cfg.Reencode),
		assembler.WithLogger(sugar),
	)

	promptService := prompts.NewService(prompts.NewRepo(db))

	var scriptService *script.Service
	if cfg.OpenAIAPIKey != "" {
		llm, err := script.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			log.Fatalf("failed to init openai: %v", err)
		}
		scriptService = script.NewService(llm, resolver.Speakers(), sugar)
		scriptService.SetPromptSource(promptService)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	scheduler := podcast.NewScheduler(resolver, ttsClient, cfg.TTSConcurrency, cfg.TTSTimeout, sugar)
	podcastService := podcast.NewService(scheduler, clips.Factory(sugar), ffmpeg, ffmpeg, sugar)

	runService := runs.NewService(runs.NewRepo(db), podcastService, runs.Options{
		AudioDir:  cfg.AudioDir,
		OutputDir: cfg.OutputDir,
		QueueSize: cfg.QueueSize,
		Publisher: publisher,
		Notifier:  notifier,
		Log:       sugar,
	})
	runService.Start(ctx)

	authService := domain.NewAuthService(infra.NewAuthRepo(db), cfg.AuthSecret, cfg.AuthTTL)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	var generator delivery.ScriptGenerator
	if scriptService != nil {
		generator = scriptService
	}
	podcastHandler := delivery.NewPodcastHandler(runService, generator, resolver.Speakers(), zl)
	authHandler := delivery.NewAuthHandler(authService)

	promptHandler := prompts.NewHandler(promptService)

	delivery.RegisterRoutes(r, podcastHandler, authHandler, promptHandler, authService)

	// =========================================================================
	// START SERVER
	// =========================================================================

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + srv.Addr,
		Service: "podcast_maker",
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}

	runService.Wait()
}
