// main.go
//
// Entry point. Two modes:
//   redactle                          serve the JSON API on $PORT
//   redactle play [-lang xx] [title]  play in the terminal
//
// Configuration comes from the environment (and .env); see internal/config.

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/redactle/assets"
	"github.com/robalobadob/redactle/internal/cache"
	"github.com/robalobadob/redactle/internal/config"
	"github.com/robalobadob/redactle/internal/httpserver"
	"github.com/robalobadob/redactle/internal/store"
	"github.com/robalobadob/redactle/internal/term"
	"github.com/robalobadob/redactle/internal/titles"
	"github.com/robalobadob/redactle/internal/wiki"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	play := len(os.Args) > 1 && os.Args[1] == "play"
	setupLogging(cfg, play)

	fetcher, db := buildFetcher(cfg)
	if db != nil {
		defer db.Close()
	}

	if play {
		// Ctrl-C keeps its default meaning here: it ends the game.
		if err := runPlay(context.Background(), cfg, fetcher, os.Args[2:]); err != nil {
			log.Error().Err(err).Msg("terminal game")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runServer(ctx, cfg, fetcher)
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT. Terminal mode always logs
// human-readable lines to stderr so they stay out of the game output.
func setupLogging(cfg config.Config, play bool) {
	zerolog.SetGlobalLevel(cfg.Level())
	if play {
		if cfg.LogLevel == "info" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// buildFetcher returns the wiki client, wrapped in the SQLite cache when
// enabled. A cache that cannot be opened is logged and skipped.
func buildFetcher(cfg config.Config) (wiki.Fetcher, *sql.DB) {
	client := wiki.NewClient(wiki.Options{
		BaseURL:    cfg.WikiBaseURL,
		Format:     cfg.Format(),
		UserAgent:  cfg.WikiUserAgent,
		HTTPClient: &http.Client{Timeout: cfg.WikiTimeout},
	})
	if !cfg.CacheEnabled() {
		return client, nil
	}
	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DBPath).Msg("article cache disabled")
		return client, nil
	}
	if err := migrate(db, assets.Migrations()); err != nil {
		log.Warn().Err(err).Msg("article cache disabled")
		_ = db.Close()
		return client, nil
	}
	st := cache.NewStore(db)
	if cfg.ArticleCacheTTL > 0 {
		if n, err := st.Purge(context.Background(), time.Now().Add(-cfg.ArticleCacheTTL)); err != nil {
			log.Warn().Err(err).Msg("purge article cache")
		} else if n > 0 {
			log.Info().Int64("purged", n).Msg("article cache")
		}
	}
	return cache.NewFetcher(client, st, cfg.Format(), cfg.ArticleCacheTTL), db
}

func runServer(ctx context.Context, cfg config.Config, fetcher wiki.Fetcher) {
	list, err := titles.Load(cfg.TitlesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load title list")
	}
	log.Info().Int("titles", list.Len()).Msg("title list loaded")

	mem := store.NewMemoryStore(cfg.SessionTTL)
	go mem.Run(ctx, time.Minute)

	srv := httpserver.New(httpserver.Options{
		Fetcher:      fetcher,
		Store:        mem,
		Titles:       list,
		DefaultLang:  cfg.DefaultLang,
		JWTSecret:    cfg.JWTSecret,
		SessionTTL:   cfg.SessionTTL,
		ClientOrigin: cfg.ClientOrigin,
		DailySalt:    cfg.DailySalt,
		Secure:       strings.HasPrefix(cfg.ClientOrigin, "https://"),
	})
	log.Info().Str("port", cfg.Port).Msg("starting redactle server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func runPlay(ctx context.Context, cfg config.Config, fetcher wiki.Fetcher, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	lang := fs.String("lang", cfg.DefaultLang, "wikipedia language edition")
	if err := fs.Parse(args); err != nil {
		return err
	}
	edition, err := wiki.NormalizeLanguage(*lang)
	if err != nil {
		return fmt.Errorf("-lang %q: %w", *lang, err)
	}
	list, err := titles.Load(cfg.TitlesFile)
	if err != nil {
		log.Warn().Err(err).Msg("title list unavailable; random picks need the network")
	}
	title := strings.Join(fs.Args(), " ")
	return term.New(fetcher, list, edition, os.Stdout).Run(ctx, os.Stdin, title)
}
