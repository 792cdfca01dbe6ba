package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/redactle/internal/article"
)

// fakeAPI serves canned action API responses keyed by the "action" parameter.
func fakeAPI(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/w/api.php", r.URL.Path)
		require.Equal(t, "json", r.URL.Query().Get("format"))
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
}

func TestFetchArticleWikitext(t *testing.T) {
	c := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "parse", q.Get("action"))
		assert.Equal(t, "rust", q.Get("page"))
		assert.Equal(t, "wikitext", q.Get("prop"))
		assert.Equal(t, "1", q.Get("redirects"))
		_, _ = w.Write([]byte(`{"parse":{"title":"Rust (programming language)","pageid":1,"wikitext":"'''Rust''' is fast."}}`))
	})

	a, err := c.FetchArticle(context.Background(), "en", " rust ")
	require.NoError(t, err)
	assert.Equal(t, "Rust (programming language)", a.Title)
	assert.Equal(t, "'''Rust''' is fast.", a.Markup)
	assert.Equal(t, article.Wikitext, a.Format)

	doc := a.Parse()
	assert.Equal(t, article.Tokenize("Rust (programming language)"), doc.Title)
	require.Len(t, doc.Content, 1)
	assert.Equal(t, article.Paragraph{Tokens: article.Tokenize("Rust is fast.")}, doc.Content[0])
}

func TestFetchArticleHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text", r.URL.Query().Get("prop"))
		_, _ = w.Write([]byte(`{"parse":{"title":"Rust","text":"<div class=\"mw-parser-output\"><p>Rust is fast.</p></div>"}}`))
	}))
	defer srv.Close()
	c := NewClient(Options{BaseURL: srv.URL, Format: article.HTML})

	a, err := c.FetchArticle(context.Background(), "en", "Rust")
	require.NoError(t, err)
	assert.Equal(t, article.HTML, a.Format)
	assert.Equal(t, []article.Section{article.Paragraph{Tokens: article.Tokenize("Rust is fast.")}}, a.Parse().Content)
}

func TestFetchArticleErrors(t *testing.T) {
	tests := []struct {
		name string
		lang string
		body string
		code int
		want error
	}{
		{"missing title", "en", `{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`, 200, ErrNotFound},
		{"other api error", "en", `{"error":{"code":"ratelimited","info":"slow down"}}`, 200, ErrUpstream},
		{"http 404", "en", `not found`, 404, ErrNotFound},
		{"http 500", "en", `oops`, 500, ErrUpstream},
		{"bad json", "en", `{`, 200, ErrUpstream},
		{"empty parse", "en", `{}`, 200, ErrUpstream},
		{"invalid language", "en.evil.com/", `{}`, 200, ErrInvalidLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.FetchArticle(context.Background(), tt.lang, "Some title")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "article", fe.Op)
			assert.Equal(t, "Some title", fe.Title)
		})
	}
}

func TestFetchArticleEmptyTitle(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://127.0.0.1:0"})
	_, err := c.FetchArticle(context.Background(), "en", "   ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchArticleCanceled(t *testing.T) {
	c := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchArticle(ctx, "en", "Rust")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchRandomTitle(t *testing.T) {
	c := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "query", q.Get("action"))
		assert.Equal(t, "random", q.Get("list"))
		assert.Equal(t, "0", q.Get("rnnamespace"))
		_, _ = w.Write([]byte(`{"batchcomplete":true,"query":{"random":[{"id":42,"ns":0,"title":"Red panda"}]}}`))
	})
	title, err := c.FetchRandomTitle(context.Background(), "de")
	require.NoError(t, err)
	assert.Equal(t, "Red panda", title)
}

func TestFetchRandomTitleEmpty(t *testing.T) {
	c := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"random":[]}}`))
	})
	_, err := c.FetchRandomTitle(context.Background(), "en")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestBaseURLLanguagePlaceholder(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"parse":{"title":"X","wikitext":"x"}}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL + "/{lang}"})
	_, err := c.FetchArticle(context.Background(), "FR", "X")
	require.NoError(t, err)
	assert.Equal(t, "/fr/w/api.php", path)
}

func TestNormalizeLanguage(t *testing.T) {
	valid := map[string]string{
		"en":        "en",
		" DE ":      "de",
		"simple":    "simple",
		"zh-yue":    "zh-yue",
		"be-tarask": "be-tarask",
	}
	for in, want := range valid {
		got, err := NormalizeLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "e", "english", "en.evil.com", "en/../x", "1x", "en_GB"} {
		_, err := NormalizeLanguage(in)
		assert.ErrorIs(t, err, ErrInvalidLanguage, in)
	}
}
