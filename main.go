package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connect2pros/internal/auth"
	"github.com/robalobadob/connect2pros/internal/config"
	"github.com/robalobadob/connect2pros/internal/github"
	"github.com/robalobadob/connect2pros/internal/httpserver"
	"github.com/robalobadob/connect2pros/internal/social"
	"github.com/robalobadob/connect2pros/internal/store"
	"github.com/robalobadob/connect2pros/internal/store/mongostore"
	"github.com/robalobadob/connect2pros/internal/store/sqlitestore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	gh := github.NewClient(cfg.GitHubAPIURL, cfg.GitHubClientID, cfg.GitHubSecret)
	svc := social.NewService(st, tokens, gh)
	srv := httpserver.New(svc, tokens, cfg)

	log.Info().Str("port", cfg.Port).Msg("starting connect2pros")
	if err := srv.Start(ctx, cfg.Addr()); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("server stopped")
}

// openStore picks the backend from the scheme of cfg.DatabaseURI:
// mongodb:// and mongodb+srv:// use MongoDB, sqlite://<path> an embedded
// SQLite file, memory:// a process-local store.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	uri := cfg.DatabaseURI
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		st, err := mongostore.Connect(ctx, uri, cfg.DatabaseName)
		if err != nil {
			return nil, err
		}
		return st, nil
	case strings.HasPrefix(uri, "sqlite://"):
		st, err := sqlitestore.Open(strings.TrimPrefix(uri, "sqlite://"))
		if err != nil {
			return nil, err
		}
		return st, nil
	case strings.HasPrefix(uri, "memory://"):
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database uri scheme: %q", uri)
	}
}
