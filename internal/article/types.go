// internal/article/types.go
//
// Data model for a parsed encyclopedia article.
// Defines:
//   - Token: a Word or NonWord run of text.
//   - Section: Heading, Paragraph, UnorderedList, OrderedList (closed set).
//   - Document: title tokens plus a tree of sections.
//
// Sections nest only through list items; every child sequence is owned by its
// parent, so the tree has no back-references.

package article

// Kind classifies a Token.
type Kind uint8

const (
	Word    Kind = iota + 1 // maximal run of word-constituent characters
	NonWord                 // maximal run of everything else
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case NonWord:
		return "nonword"
	}
	return "invalid"
}

// Token is a non-empty run of text from the article.
type Token struct {
	Kind Kind
	Text string
}

// IsWord reports whether t is a guessable unit.
func (t Token) IsWord() bool { return t.Kind == Word }

// Section is one structural block of a Document.
// The implementations are Heading, Paragraph, UnorderedList and OrderedList.
type Section interface {
	section()
}

// Heading is a section title; Level is always in [MinLevel, MaxLevel].
type Heading struct {
	Level  int
	Tokens []Token
}

// Paragraph is a block of body text.
type Paragraph struct {
	Tokens []Token
}

// Item is the body of one list item.
type Item []Section

// UnorderedList is a bulleted list.
type UnorderedList struct {
	Items []Item
}

// OrderedList is a numbered list. Numbers are positional and 1-based.
type OrderedList struct {
	Items []Item
}

func (Heading) section()       {}
func (Paragraph) section()     {}
func (UnorderedList) section() {}
func (OrderedList) section()   {}

const (
	MinLevel = 1
	MaxLevel = 6
)

// NewHeading builds a Heading from raw text, clamping level into [MinLevel, MaxLevel].
func NewHeading(level int, text string) Heading {
	return Heading{Level: clampLevel(level), Tokens: Tokenize(text)}
}

func clampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Document is a parsed article.
type Document struct {
	Title   []Token
	Content []Section
}

// Walk calls fn for every token of d in reading order: title first, then the
// content tree depth-first, descending into every list item.
// Walking stops early when fn returns false.
func (d *Document) Walk(fn func(Token) bool) {
	if d == nil {
		return
	}
	if !walkTokens(d.Title, fn) {
		return
	}
	walkSections(d.Content, fn)
}

func walkTokens(tokens []Token, fn func(Token) bool) bool {
	for _, t := range tokens {
		if !fn(t) {
			return false
		}
	}
	return true
}

func walkSections(sections []Section, fn func(Token) bool) bool {
	for _, s := range sections {
		switch s := s.(type) {
		case Heading:
			if !walkTokens(s.Tokens, fn) {
				return false
			}
		case Paragraph:
			if !walkTokens(s.Tokens, fn) {
				return false
			}
		case UnorderedList:
			if !walkItems(s.Items, fn) {
				return false
			}
		case OrderedList:
			if !walkItems(s.Items, fn) {
				return false
			}
		}
	}
	return true
}

func walkItems(items []Item, fn func(Token) bool) bool {
	for _, item := range items {
		if !walkSections(item, fn) {
			return false
		}
	}
	return true
}
