// internal/config/config.go
//
// Process configuration read from the environment (after .env is loaded).
// Every field has a default so the server and terminal modes run with no
// configuration at all.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/robalobadob/redactle/internal/article"
	"github.com/robalobadob/redactle/internal/wiki"
)

// Config is the full set of tunables.
type Config struct {
	Port      string `env:"PORT"       envDefault:"5175"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json | console

	DBPath          string        `env:"DB_PATH"           envDefault:"./data/redactle.db"`
	ArticleCache    bool          `env:"ARTICLE_CACHE"     envDefault:"true"`
	ArticleCacheTTL time.Duration `env:"ARTICLE_CACHE_TTL" envDefault:"24h"`

	WikiBaseURL   string        `env:"WIKI_BASE_URL"   envDefault:"https://{lang}.wikipedia.org"`
	WikiFormat    string        `env:"WIKI_FORMAT"     envDefault:"wikitext"` // wikitext | html
	WikiUserAgent string        `env:"WIKI_USER_AGENT"`
	WikiTimeout   time.Duration `env:"WIKI_TIMEOUT"    envDefault:"15s"`
	DefaultLang   string        `env:"DEFAULT_LANG"    envDefault:"en"`

	JWTSecret    string        `env:"JWT_SECRET"    envDefault:"dev_secret_change_me"`
	SessionTTL   time.Duration `env:"SESSION_TTL"   envDefault:"24h"`
	ClientOrigin string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	DailySalt    string        `env:"DAILY_SALT"    envDefault:"local_dev_salt"`
	TitlesFile   string        `env:"TITLES_FILE"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot use.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT %q: want json or console", c.LogFormat)
	}
	if c.WikiFormat != string(article.Wikitext) && c.WikiFormat != string(article.HTML) {
		return fmt.Errorf("WIKI_FORMAT %q: want wikitext or html", c.WikiFormat)
	}
	lang, err := wiki.NormalizeLanguage(c.DefaultLang)
	if err != nil {
		return fmt.Errorf("DEFAULT_LANG %q: %w", c.DefaultLang, err)
	}
	c.DefaultLang = lang
	if c.WikiTimeout <= 0 {
		return fmt.Errorf("WIKI_TIMEOUT %s: must be positive", c.WikiTimeout)
	}
	return nil
}

// Format returns the configured markup format.
func (c Config) Format() article.Format {
	return article.Format(c.WikiFormat)
}

// CacheEnabled reports whether fetched articles go through the SQLite cache.
func (c Config) CacheEnabled() bool {
	return c.ArticleCache && c.DBPath != ""
}

// Level returns the parsed log level; Validate has already accepted it.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
