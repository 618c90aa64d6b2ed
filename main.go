package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rwStasiuk/JSON-Database-Engine-Project/config"
	"github.com/rwStasiuk/JSON-Database-Engine-Project/handler"
	"github.com/rwStasiuk/JSON-Database-Engine-Project/store"
)

func initializeLogger(lvl string) {
	level, err := zerolog.ParseLevel(lvl)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to parse log level")
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}

// corsMiddleware wraps an http.Handler with CORS headers.
func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	// Fast path: wildcard allows everything.
	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowAll {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			for _, o := range allowedOrigins {
				if strings.TrimSpace(o) == origin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
					break
				}
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	initializeLogger(cfg.LogLevel)

	s, err := store.New(cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to create store")
	}
	defer s.Close()

	if err := s.Load(); err != nil {
		log.Fatal().Err(err).Str("path", cfg.StorePath).Msg("failed to load database")
	}

	h := handler.LogInterceptor(handler.New(s))
	wrapped := corsMiddleware(h, strings.Split(cfg.AllowedOrigins, ","))

	log.Info().
		Str("addr", cfg.Addr()).
		Str("backend", cfg.StoreBackend).
		Str("path", cfg.StorePath).
		Msg("JSON database server starting")
	if err := http.ListenAndServe(cfg.Addr(), wrapped); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
