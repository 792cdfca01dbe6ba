// internal/game/types.go
//
// Core type definitions for the Redactle game engine.
// Defines:
//   - Treatment: per-token visibility decision (blank/show/highlight).
//   - Engine: document + guesses + selection for one player.
//   - Tally: a guess paired with its occurrence count.

package game

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/robalobadob/redactle/internal/article"
)

// Treatment is how a front-end should draw one token.
//   - "blank":     hide the word, keep its length.
//   - "show":      draw the text as-is.
//   - "highlight": draw the text emphasized; it matches the selected guess.
type Treatment uint8

const (
	Blank Treatment = iota
	Show
	Highlight
)

func (t Treatment) String() string {
	switch t {
	case Show:
		return "show"
	case Highlight:
		return "highlight"
	}
	return "blank"
}

// MarshalText encodes the treatment by name.
func (t Treatment) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes a treatment name.
func (t *Treatment) UnmarshalText(b []byte) error {
	switch string(b) {
	case "blank":
		*t = Blank
	case "show":
		*t = Show
	case "highlight":
		*t = Highlight
	default:
		return fmt.Errorf("unknown treatment %q", b)
	}
	return nil
}

// Engine holds the state of one game.
// It performs no locking; callers sharing an Engine must serialize access
// (see Session).
type Engine struct {
	doc         *article.Document   // nil until Load
	counts      map[string]int      // normalized word -> occurrences in doc
	titleWords  []string            // distinct normalized title words
	guesses     map[string]struct{} // normalized guesses
	selected    string              // normalized selected guess
	hasSelected bool
	lower       *cases.Caser // reused by norm; not safe for concurrent use
}

// Tally is one registered guess and how often it occurs in the document.
type Tally struct {
	Guess       string `json:"guess"`
	Occurrences int    `json:"occurrences"`
}
