package cache

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/redactle/internal/article"
	"github.com/robalobadob/redactle/internal/wiki"
)

// Fetcher is a read-through wiki.Fetcher. Fresh entries are served from the
// store; misses and stale entries go upstream and are saved on success.
// Random titles always go upstream.
type Fetcher struct {
	upstream wiki.Fetcher
	store    *Store
	format   article.Format
	ttl      time.Duration // <= 0 keeps entries forever
}

var _ wiki.Fetcher = (*Fetcher)(nil)

// NewFetcher wraps upstream, which must produce markup in format.
func NewFetcher(upstream wiki.Fetcher, store *Store, format article.Format, ttl time.Duration) *Fetcher {
	return &Fetcher{upstream: upstream, store: store, format: format, ttl: ttl}
}

func (f *Fetcher) FetchArticle(ctx context.Context, lang, title string) (wiki.Article, error) {
	host, err := wiki.NormalizeLanguage(lang)
	key := strings.TrimSpace(title)
	if err != nil || key == "" {
		// Let upstream produce the error.
		return f.upstream.FetchArticle(ctx, lang, title)
	}

	e, ok, err := f.store.Get(ctx, host, key, f.format)
	if err != nil {
		log.Warn().Err(err).Msg("article cache read")
	}
	if ok && f.fresh(e) {
		log.Debug().Str("lang", host).Str("title", key).Msg("article cache hit")
		return e.Article, nil
	}

	a, err := f.upstream.FetchArticle(ctx, host, key)
	if err != nil {
		return wiki.Article{}, err
	}
	if err := f.store.Put(ctx, host, key, a); err != nil {
		log.Warn().Err(err).Msg("article cache write")
	}
	return a, nil
}

func (f *Fetcher) FetchRandomTitle(ctx context.Context, lang string) (string, error) {
	return f.upstream.FetchRandomTitle(ctx, lang)
}

func (f *Fetcher) fresh(e Entry) bool {
	if f.ttl <= 0 {
		return true
	}
	return f.store.now().Sub(e.FetchedAt) < f.ttl
}
