// internal/wiki/client.go
//
// Client for the MediaWiki action API.
// Responsibilities:
//   - Fetch an article's markup (wikitext or rendered HTML) by title,
//     following redirects to the canonical title.
//   - Fetch a random main-namespace title.
//   - Validate language tags before they become part of a host name.
//
// Errors are reported as *FetchError wrapping one of ErrInvalidLanguage,
// ErrNotFound or ErrUpstream. The client never retries.

package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/robalobadob/redactle/internal/article"
)

var (
	ErrInvalidLanguage = errors.New("invalid language tag")
	ErrNotFound        = errors.New("article not found")
	ErrUpstream        = errors.New("upstream request failed")
)

// FetchError describes a failed fetch.
type FetchError struct {
	Op    string // "article" or "random"
	Lang  string
	Title string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("wiki %s %s:%q: %v", e.Op, e.Lang, e.Title, e.Err)
	}
	return fmt.Sprintf("wiki %s %s: %v", e.Op, e.Lang, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Article is fetched markup with its canonical title.
type Article struct {
	Title  string
	Markup string
	Format article.Format
}

// Parse turns the fetched markup into a Document.
func (a Article) Parse() *article.Document {
	return article.ParseFormat(a.Format, a.Title, a.Markup)
}

// Fetcher is the collaborator contract the game depends on.
type Fetcher interface {
	FetchArticle(ctx context.Context, lang, title string) (Article, error)
	FetchRandomTitle(ctx context.Context, lang string) (string, error)
}

// Options configure a Client. Zero values select the defaults.
type Options struct {
	// BaseURL is the wiki origin; "{lang}" is replaced by the language tag.
	BaseURL    string
	Format     article.Format
	UserAgent  string
	HTTPClient *http.Client
}

const (
	DefaultBaseURL   = "https://{lang}.wikipedia.org"
	DefaultUserAgent = "redactle/1.0 (https://github.com/robalobadob/redactle)"
)

// Client implements Fetcher over HTTP.
type Client struct {
	baseURL   string
	format    article.Format
	userAgent string
	http      *http.Client
}

// NewClient constructs a Client.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:   opts.BaseURL,
		format:    opts.Format,
		userAgent: opts.UserAgent,
		http:      opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.format != article.HTML {
		c.format = article.Wikitext
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

// hostLabel accepts the subdomain shapes Wikipedia editions use.
var hostLabel = regexp.MustCompile(`^[a-z]{2,3}(-[a-z0-9]{2,8})*$|^simple$`)

// NormalizeLanguage validates tag and returns the edition subdomain for it.
func NormalizeLanguage(tag string) (string, error) {
	lang := strings.ToLower(strings.TrimSpace(tag))
	if !hostLabel.MatchString(lang) {
		return "", ErrInvalidLanguage
	}
	if lang == "simple" {
		return lang, nil
	}
	if _, err := language.Parse(lang); err != nil {
		var unknown language.ValueError
		if !errors.As(err, &unknown) {
			return "", ErrInvalidLanguage
		}
	}
	return lang, nil
}

type parseResponse struct {
	Parse *struct {
		Title    string `json:"title"`
		Wikitext string `json:"wikitext"`
		Text     string `json:"text"`
	} `json:"parse"`
	Error *apiError `json:"error"`
}

type randomResponse struct {
	Query *struct {
		Random []struct {
			Title string `json:"title"`
		} `json:"random"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// FetchArticle downloads the markup of title from the lang edition.
func (c *Client) FetchArticle(ctx context.Context, lang, title string) (Article, error) {
	fail := func(err error) (Article, error) {
		return Article{}, &FetchError{Op: "article", Lang: lang, Title: title, Err: err}
	}
	host, err := NormalizeLanguage(lang)
	if err != nil {
		return fail(err)
	}
	if strings.TrimSpace(title) == "" {
		return fail(ErrNotFound)
	}
	prop := "wikitext"
	if c.format == article.HTML {
		prop = "text"
	}
	q := url.Values{
		"action":             {"parse"},
		"page":               {strings.TrimSpace(title)},
		"prop":               {prop},
		"redirects":          {"1"},
		"disableeditsection": {"1"},
		"format":             {"json"},
		"formatversion":      {"2"},
	}
	var res parseResponse
	if err := c.get(ctx, host, q, &res); err != nil {
		return fail(err)
	}
	if res.Error != nil {
		if res.Error.Code == "missingtitle" || res.Error.Code == "invalidtitle" {
			return fail(ErrNotFound)
		}
		return fail(fmt.Errorf("%w: %s: %s", ErrUpstream, res.Error.Code, res.Error.Info))
	}
	if res.Parse == nil {
		return fail(fmt.Errorf("%w: empty parse response", ErrUpstream))
	}
	a := Article{Title: res.Parse.Title, Markup: res.Parse.Wikitext, Format: c.format}
	if c.format == article.HTML {
		a.Markup = res.Parse.Text
	}
	log.Debug().Str("lang", host).Str("title", a.Title).Int("bytes", len(a.Markup)).Msg("fetched article")
	return a, nil
}

// FetchRandomTitle returns the title of a random article in the lang edition.
func (c *Client) FetchRandomTitle(ctx context.Context, lang string) (string, error) {
	fail := func(err error) (string, error) {
		return "", &FetchError{Op: "random", Lang: lang, Err: err}
	}
	host, err := NormalizeLanguage(lang)
	if err != nil {
		return fail(err)
	}
	q := url.Values{
		"action":        {"query"},
		"list":          {"random"},
		"rnnamespace":   {"0"},
		"rnlimit":       {"1"},
		"format":        {"json"},
		"formatversion": {"2"},
	}
	var res randomResponse
	if err := c.get(ctx, host, q, &res); err != nil {
		return fail(err)
	}
	if res.Error != nil {
		return fail(fmt.Errorf("%w: %s: %s", ErrUpstream, res.Error.Code, res.Error.Info))
	}
	if res.Query == nil || len(res.Query.Random) == 0 || res.Query.Random[0].Title == "" {
		return fail(fmt.Errorf("%w: no random title", ErrUpstream))
	}
	return res.Query.Random[0].Title, nil
}

// get performs one API request against the host edition and decodes JSON into out.
func (c *Client) get(ctx context.Context, host string, q url.Values, out any) error {
	endpoint := strings.ReplaceAll(c.baseURL, "{lang}", host) + "/w/api.php?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}
