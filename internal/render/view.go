// internal/render/view.go
//
// Read-only masked view of the loaded article.
// Responsibilities:
//   - Walk the document tree and attach each token's treatment.
//   - Replace the text of blanked words with one '_' per character so the
//     hidden word never leaves the process.
//   - Collect the guess panel (tally) and completion flag.
//
// Every front-end draws from a View rather than from the engine directly.

package render

import (
	"strings"
	"unicode/utf8"

	"github.com/robalobadob/redactle/internal/article"
	"github.com/robalobadob/redactle/internal/game"
)

// Token is one drawable run of text.
type Token struct {
	Text      string         `json:"text"`
	Word      bool           `json:"word,omitempty"`
	Treatment game.Treatment `json:"treatment"`
}

// Section kinds.
const (
	KindHeading   = "heading"
	KindParagraph = "paragraph"
	KindUnordered = "ul"
	KindOrdered   = "ol"
)

// Section mirrors article.Section with masked tokens.
type Section struct {
	Kind   string      `json:"kind"`
	Level  int         `json:"level,omitempty"`
	Tokens []Token     `json:"tokens,omitempty"`
	Items  [][]Section `json:"items,omitempty"`
}

// View is the state a front-end needs to draw one frame.
type View struct {
	Loaded        bool         `json:"loaded"`
	Title         []Token      `json:"title"`
	Sections      []Section    `json:"sections"`
	Guesses       []game.Tally `json:"guesses"`
	Selected      string       `json:"selected,omitempty"`
	TitleComplete bool         `json:"titleComplete"`
}

// Build renders the engine's current state. Callers holding a game.Session
// must call it inside Session.Do.
func Build(e *game.Engine) View {
	v := View{
		Title:    []Token{},
		Sections: []Section{},
		Guesses:  e.Tally(),
	}
	v.Selected, _ = e.Selected()
	doc, ok := e.Document()
	if !ok {
		return v
	}
	v.Loaded = true
	v.TitleComplete = e.TitleComplete()
	v.Title = tokens(e, doc.Title)
	v.Sections = sections(e, doc.Content)
	return v
}

// Mask hides text, keeping its length in characters.
func Mask(text string) string {
	return strings.Repeat("_", utf8.RuneCountInString(text))
}

func tokens(e *game.Engine, in []article.Token) []Token {
	out := make([]Token, 0, len(in))
	for _, t := range in {
		tr := e.TokenTreatment(t)
		text := t.Text
		if tr == game.Blank {
			text = Mask(text)
		}
		out = append(out, Token{Text: text, Word: t.IsWord(), Treatment: tr})
	}
	return out
}

func sections(e *game.Engine, in []article.Section) []Section {
	out := make([]Section, 0, len(in))
	for _, s := range in {
		switch s := s.(type) {
		case article.Heading:
			out = append(out, Section{Kind: KindHeading, Level: s.Level, Tokens: tokens(e, s.Tokens)})
		case article.Paragraph:
			out = append(out, Section{Kind: KindParagraph, Tokens: tokens(e, s.Tokens)})
		case article.UnorderedList:
			out = append(out, Section{Kind: KindUnordered, Items: items(e, s.Items)})
		case article.OrderedList:
			out = append(out, Section{Kind: KindOrdered, Items: items(e, s.Items)})
		}
	}
	return out
}

func items(e *game.Engine, in []article.Item) [][]Section {
	out := make([][]Section, 0, len(in))
	for _, it := range in {
		out = append(out, sections(e, it))
	}
	return out
}

// Text returns the tokens' text concatenated.
func Text(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}
