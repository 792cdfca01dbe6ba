// internal/term/repl.go
//
// Terminal front-end: a line-oriented game loop.
// Responsibilities:
//   - Load an article (by title or at random) through a wiki.Fetcher; a
//     curated title list stands in when the random lookup fails.
//   - Treat each plain input line as a guess and report its occurrences.
//   - Handle ':' commands (select, load, random, lang, show, guesses, help, quit).
//
// The REPL owns its engine; nothing else touches it.

package term

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/redactle/internal/game"
	"github.com/robalobadob/redactle/internal/render"
	"github.com/robalobadob/redactle/internal/titles"
	"github.com/robalobadob/redactle/internal/wiki"
)

const help = `Type a word to guess it. Commands:
  :select WORD   highlight WORD in the article (again to clear)
  :load TITLE    start over on TITLE
  :random        start over on a random article
  :lang CODE     switch language edition for the next load
  :show          print the article
  :guesses       print your guesses with occurrence counts
  :help          this text
  :quit          leave`

// REPL is one interactive terminal game.
type REPL struct {
	fetcher wiki.Fetcher
	titles  *titles.List // random fallback; may be nil
	lang    string
	engine  *game.Engine
	out     io.Writer
	styles  Styles
}

// New constructs a REPL writing to out. list may be nil.
func New(f wiki.Fetcher, list *titles.List, lang string, out io.Writer) *REPL {
	return &REPL{fetcher: f, titles: list, lang: lang, engine: game.New(), out: out, styles: NewStyles(out)}
}

// Engine exposes the game state (useful for tests).
func (r *REPL) Engine() *game.Engine { return r.engine }

// Run loads title (random when empty), then reads commands from in until
// :quit, EOF or ctx is done.
func (r *REPL) Run(ctx context.Context, in io.Reader, title string) error {
	fmt.Fprintln(r.out, r.styles.Title.Render("Redactle"))
	fmt.Fprintln(r.out, "Guess the article. :help lists commands.")
	fmt.Fprintln(r.out)
	r.load(ctx, title)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(r.out)
			return sc.Err()
		}
		if r.Exec(ctx, sc.Text()) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Exec handles one input line and reports whether the loop should end.
func (r *REPL) Exec(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		r.guess(line)
		return false
	}
	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "q", "quit", "exit":
		return true
	case "s", "select":
		if arg == "" {
			fmt.Fprintln(r.out, "usage: :select WORD")
			return false
		}
		r.engine.ToggleSelection(arg)
		r.show()
	case "load":
		if arg == "" {
			fmt.Fprintln(r.out, "usage: :load TITLE")
			return false
		}
		r.load(ctx, arg)
	case "random":
		r.load(ctx, "")
	case "lang":
		lang, err := wiki.NormalizeLanguage(arg)
		if err != nil {
			fmt.Fprintf(r.out, "%q is not a language code\n", arg)
			return false
		}
		r.lang = lang
		fmt.Fprintf(r.out, "language set to %s; :load or :random to play\n", lang)
	case "show":
		r.show()
	case "g", "guesses":
		PrintGuesses(r.out, render.Build(r.engine), r.styles)
	case "h", "help", "?":
		fmt.Fprintln(r.out, help)
	default:
		fmt.Fprintf(r.out, "unknown command :%s (try :help)\n", cmd)
	}
	return false
}

func (r *REPL) guess(raw string) {
	if !r.engine.Loaded() {
		fmt.Fprintln(r.out, "no article loaded; try :random")
		return
	}
	wasComplete := r.engine.TitleComplete()
	g, added := r.engine.RegisterGuess(raw)
	n, _ := r.engine.CountOccurrences(g)
	switch {
	case !added:
		fmt.Fprintf(r.out, "already guessed %q (%d)\n", g, n)
	case n == 1:
		fmt.Fprintf(r.out, "%q: 1 occurrence\n", g)
	default:
		fmt.Fprintf(r.out, "%q: %d occurrences\n", g, n)
	}
	if !wasComplete && r.engine.TitleComplete() {
		r.show()
		fmt.Fprintln(r.out, r.styles.Notice.Render(fmt.Sprintf("Solved in %d guesses!", len(r.engine.Guesses()))))
	}
}

// load fetches title (random when empty) into a fresh game. Failures are
// reported and leave the current game untouched.
func (r *REPL) load(ctx context.Context, title string) {
	if title == "" {
		t, err := r.fetcher.FetchRandomTitle(ctx, r.lang)
		switch {
		case err == nil:
		case r.titles != nil:
			t = r.titles.Random()
			log.Warn().Err(err).Str("title", t).Msg("random title unavailable; using curated list")
		default:
			r.reportFetch(err)
			return
		}
		title = t
	}
	a, err := r.fetcher.FetchArticle(ctx, r.lang, title)
	if err != nil {
		r.reportFetch(err)
		return
	}
	log.Debug().Str("lang", r.lang).Str("title", a.Title).Msg("article loaded")
	r.engine.Load(a.Parse())
	r.show()
}

func (r *REPL) reportFetch(err error) {
	switch {
	case errors.Is(err, wiki.ErrNotFound):
		fmt.Fprintln(r.out, "no such article")
	case errors.Is(err, wiki.ErrInvalidLanguage):
		fmt.Fprintf(r.out, "%q is not a language code\n", r.lang)
	default:
		fmt.Fprintf(r.out, "could not fetch article: %v\n", err)
	}
}

func (r *REPL) show() {
	PrintView(r.out, render.Build(r.engine), r.styles)
}
