package delivery

import (
	"net/http"
	"strings"

	"github.com/Vovarama1992/podcast_maker/internal/ports"
)

// AuthMiddleware пускает только запросы с валидным Bearer-токеном оператора.
func AuthMiddleware(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			valid, err := auth.ValidateToken(r.Context(), token)
			if err != nil {
				http.Error(w, "auth is not configured", http.StatusInternalServerError)
				return
			}
			if !valid {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
