package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/Vovarama1992/podcast_maker/internal/ports"
	"github.com/Vovarama1992/podcast_maker/internal/prompts"
)

func RegisterRoutes(
	r chi.Router,
	hPodcast *PodcastHandler,
	hAuth *AuthHandler,
	hPrompts *prompts.Handler,
	authSvc ports.AuthService,
) {
	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// --- auth ---
	r.With(
		httputil.RecoverMiddleware,
		httprate.LimitByIP(10, time.Minute),
	).Post("/auth/login", hAuth.Login)

	// --- protected ---
	r.Group(func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			AuthMiddleware(authSvc),
		)

		// --- подкасты ---
		pr.With(httprate.LimitByIP(30, time.Minute)).Post("/podcasts", hPodcast.CreateFromScript)
		pr.With(httprate.LimitByIP(10, time.Minute)).Post("/podcasts/from-article", hPodcast.CreateFromArticle)
		pr.Get("/podcasts", hPodcast.List)
		pr.Get("/podcasts/{id}", hPodcast.Get)
		pr.Get("/voices", hPodcast.Voices)

		// --- промпты ---
		if hPrompts != nil {
			pr.Get("/prompts", hPrompts.List)
			pr.Put("/prompts/{name}", hPrompts.Update)
		}
	})
}
