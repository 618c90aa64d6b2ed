package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LogInterceptor stamps each request with an ID and logs it, passing a
// request-scoped logger down through the context.
func LogInterceptor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := log.With().Str("request_id", uuid.New().String()).Logger()

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Msg("request started")

		next.ServeHTTP(w, r.WithContext(log.WithContext(r.Context())))
	})
}
