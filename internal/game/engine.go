// internal/game/engine.go
//
// Game state engine for a single Redactle session.
// Responsibilities:
//   - Load a parsed article, resetting guesses and selection.
//   - Register normalized guesses and toggle the selected guess.
//   - Derive per-token treatment (blank/show/highlight).
//   - Count occurrences of a word across title and body.
//
// Notes:
//   - Guesses are compared in normal form: trimmed and lowercased.
//   - Word counts and the title word set are computed once by Load; a loaded
//     document must not be modified afterwards.
//   - Guessing every title word unlocks the whole document, title and body.
//   - Two states: empty (no document) and loaded. Every operation is defined
//     in both; none of them fail.

package game

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robalobadob/redactle/internal/article"
)

// New constructs an empty engine with no document loaded.
// The zero Engine is equally usable.
func New() *Engine {
	return &Engine{guesses: make(map[string]struct{})}
}

// Normalize returns the form guesses and words are compared in.
func Normalize(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

// norm is Normalize with the engine's own caser.
func (e *Engine) norm(raw string) string {
	if e.lower == nil {
		c := cases.Lower(language.Und)
		e.lower = &c
	}
	return e.lower.String(strings.TrimSpace(raw))
}

// Load replaces the document and clears guesses and selection.
func (e *Engine) Load(doc *article.Document) {
	e.doc = doc
	e.guesses = make(map[string]struct{})
	e.selected, e.hasSelected = "", false
	e.counts = make(map[string]int)
	e.titleWords = nil

	doc.Walk(func(t article.Token) bool {
		if t.IsWord() {
			e.counts[e.norm(t.Text)]++
		}
		return true
	})
	if doc == nil {
		return
	}
	seen := make(map[string]bool)
	for _, t := range doc.Title {
		if !t.IsWord() {
			continue
		}
		if w := e.norm(t.Text); !seen[w] {
			seen[w] = true
			e.titleWords = append(e.titleWords, w)
		}
	}
}

// Document returns the loaded document, if any.
func (e *Engine) Document() (*article.Document, bool) {
	return e.doc, e.doc != nil
}

// Loaded reports whether a document is present.
func (e *Engine) Loaded() bool { return e.doc != nil }

// RegisterGuess normalizes raw and adds it to the guesses.
// Returns the normalized guess and whether it was new. Input that is empty
// after trimming is ignored.
func (e *Engine) RegisterGuess(raw string) (string, bool) {
	g := e.norm(raw)
	if g == "" {
		return "", false
	}
	if _, ok := e.guesses[g]; ok {
		return g, false
	}
	if e.guesses == nil {
		e.guesses = make(map[string]struct{})
	}
	e.guesses[g] = struct{}{}
	return g, true
}

// HasGuess reports whether raw, normalized, has been guessed.
func (e *Engine) HasGuess(raw string) bool {
	_, ok := e.guesses[e.norm(raw)]
	return ok
}

// Guesses returns the normalized guesses in sorted order.
func (e *Engine) Guesses() []string {
	out := make([]string, 0, len(e.guesses))
	for g := range e.guesses {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// ToggleSelection selects raw, or clears the selection when raw is already
// selected. Empty input leaves the selection unchanged.
func (e *Engine) ToggleSelection(raw string) {
	g := e.norm(raw)
	if g == "" {
		return
	}
	if e.hasSelected && e.selected == g {
		e.selected, e.hasSelected = "", false
		return
	}
	e.selected, e.hasSelected = g, true
}

// Selected returns the selected guess, if any.
func (e *Engine) Selected() (string, bool) {
	return e.selected, e.hasSelected
}

// TitleComplete reports whether every title word has been guessed.
// It is false with no document, and true for a document whose title has no words.
func (e *Engine) TitleComplete() bool {
	if e.doc == nil {
		return false
	}
	for _, w := range e.titleWords {
		if _, ok := e.guesses[w]; !ok {
			return false
		}
	}
	return true
}

// TokenTreatment decides how tok is drawn under the current guesses.
// Highlight wins over show; non-words are always shown.
func (e *Engine) TokenTreatment(tok article.Token) Treatment {
	if !tok.IsWord() {
		return Show
	}
	w := e.norm(tok.Text)
	if e.hasSelected && w == e.selected {
		return Highlight
	}
	if _, ok := e.guesses[w]; ok || e.TitleComplete() {
		return Show
	}
	return Blank
}

// CountOccurrences returns how many word tokens of the document equal word
// after normalization. ok is false when no document is loaded.
func (e *Engine) CountOccurrences(word string) (n int, ok bool) {
	if e.doc == nil {
		return 0, false
	}
	return e.counts[e.norm(word)], true
}

// Tally returns every guess with its occurrence count, sorted by guess.
func (e *Engine) Tally() []Tally {
	guesses := e.Guesses()
	out := make([]Tally, 0, len(guesses))
	for _, g := range guesses {
		out = append(out, Tally{Guess: g, Occurrences: e.counts[g]})
	}
	return out
}
