package game

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/redactle/internal/article"
)

func word(s string) article.Token    { return article.Token{Kind: article.Word, Text: s} }
func nonWord(s string) article.Token { return article.Token{Kind: article.NonWord, Text: s} }

// rustDoc is title [Rust] with one paragraph "Rust is fast".
func rustDoc() *article.Document {
	return &article.Document{
		Title: []article.Token{word("Rust")},
		Content: []article.Section{
			article.Paragraph{Tokens: []article.Token{word("Rust"), nonWord(" "), word("is"), nonWord(" "), word("fast")}},
		},
	}
}

func TestEmptyEngine(t *testing.T) {
	e := New()
	assert.False(t, e.Loaded())
	_, ok := e.Document()
	assert.False(t, ok)
	assert.False(t, e.TitleComplete())

	n, ok := e.CountOccurrences("rust")
	assert.False(t, ok)
	assert.Zero(t, n)

	assert.Equal(t, Blank, e.TokenTreatment(word("rust")))
	assert.Equal(t, Show, e.TokenTreatment(nonWord(", ")))
	assert.Empty(t, e.Guesses())
	assert.Empty(t, e.Tally())
}

func TestZeroValueEngine(t *testing.T) {
	var e Engine
	g, added := e.RegisterGuess(" Rust ")
	assert.Equal(t, "rust", g)
	assert.True(t, added)
	assert.True(t, e.HasGuess("RUST"))
	assert.Equal(t, []Tally{{Guess: "rust"}}, e.Tally())

	e.Load(rustDoc())
	n, ok := e.CountOccurrences("rust")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestTallyMatchesCountsOnLargeDocument(t *testing.T) {
	words := []string{"alpha", "Beta", "GAMMA", "delta"}
	var tokens []article.Token
	for i := 0; i < 20000; i++ {
		tokens = append(tokens, word(words[i%len(words)]), nonWord(" "))
	}
	e := New()
	e.Load(&article.Document{
		Title:   []article.Token{word("Alpha"), nonWord(" "), word("alpha")},
		Content: []article.Section{article.Paragraph{Tokens: tokens}},
	})
	for i := 0; i < 500; i++ {
		e.RegisterGuess(fmt.Sprintf("miss%d", i))
	}
	for _, w := range words {
		e.RegisterGuess(w)
	}

	tally := e.Tally()
	require.Len(t, tally, 504)
	for _, tl := range tally {
		n, ok := e.CountOccurrences(tl.Guess)
		require.True(t, ok)
		assert.Equal(t, n, tl.Occurrences, tl.Guess)
	}
	n, _ := e.CountOccurrences("alpha")
	assert.Equal(t, 5002, n, "title words are counted too")
	n, _ = e.CountOccurrences("gamma")
	assert.Equal(t, 5000, n)
	assert.True(t, e.TitleComplete())
}

func TestLoadResetsGuessesAndSelection(t *testing.T) {
	e := New()
	e.Load(rustDoc())
	e.RegisterGuess("is")
	e.ToggleSelection("is")

	next := rustDoc()
	e.Load(next)
	doc, ok := e.Document()
	require.True(t, ok)
	assert.Same(t, next, doc)
	assert.Empty(t, e.Guesses())
	_, selected := e.Selected()
	assert.False(t, selected)
}

func TestRegisterGuess(t *testing.T) {
	e := New()
	e.Load(rustDoc())

	g, added := e.RegisterGuess("  Rust\t")
	assert.Equal(t, "rust", g)
	assert.True(t, added)

	g, added = e.RegisterGuess("RUST")
	assert.Equal(t, "rust", g)
	assert.False(t, added, "second registration is a no-op")
	assert.Equal(t, []string{"rust"}, e.Guesses())

	for _, empty := range []string{"", "   ", "\n\t"} {
		_, added = e.RegisterGuess(empty)
		assert.False(t, added)
	}
	assert.Equal(t, []string{"rust"}, e.Guesses())
	assert.True(t, e.HasGuess("Rust "))
}

func TestGuessesAreSorted(t *testing.T) {
	e := New()
	for _, g := range []string{"zeta", "Alpha", "mid"} {
		e.RegisterGuess(g)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, e.Guesses())
}

func TestToggleSelection(t *testing.T) {
	e := New()
	e.Load(rustDoc())

	e.ToggleSelection(" Fast ")
	sel, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, "fast", sel)

	e.ToggleSelection("is")
	sel, _ = e.Selected()
	assert.Equal(t, "is", sel, "a different value replaces the selection")

	e.ToggleSelection("IS")
	_, ok = e.Selected()
	assert.False(t, ok, "same value deselects")

	e.ToggleSelection("")
	_, ok = e.Selected()
	assert.False(t, ok, "empty input is ignored")
}

func TestToggleSymmetry(t *testing.T) {
	for _, x := range []string{"rust", "Is ", "other", "  "} {
		for _, preselect := range []bool{false, true} {
			e := New()
			e.Load(rustDoc())
			if preselect {
				e.ToggleSelection(x)
			}
			before, beforeOK := e.Selected()
			e.ToggleSelection(x)
			e.ToggleSelection(x)
			after, afterOK := e.Selected()
			assert.Equal(t, beforeOK, afterOK, "x=%q preselect=%v", x, preselect)
			assert.Equal(t, before, after, "x=%q preselect=%v", x, preselect)
		}
	}
}

func TestTokenTreatment(t *testing.T) {
	e := New()
	e.Load(rustDoc())

	assert.Equal(t, Blank, e.TokenTreatment(word("fast")))
	assert.Equal(t, Show, e.TokenTreatment(nonWord(" ")))

	e.RegisterGuess("Fast")
	assert.Equal(t, Show, e.TokenTreatment(word("fast")))
	assert.Equal(t, Show, e.TokenTreatment(word("FAST")), "matching is case-insensitive")

	e.ToggleSelection("fast")
	assert.Equal(t, Highlight, e.TokenTreatment(word("Fast")))

	e.ToggleSelection("unguessed")
	assert.Equal(t, Highlight, e.TokenTreatment(word("unguessed")), "selection need not be a guess")
	assert.Equal(t, Show, e.TokenTreatment(word("fast")))
	assert.Equal(t, Blank, e.TokenTreatment(word("is")))
}

func TestCaseInsensitiveReveal(t *testing.T) {
	e := New()
	e.Load(rustDoc())
	e.RegisterGuess("Rust")
	assert.Equal(t, Show, e.TokenTreatment(word("rust")))
	assert.Equal(t, Show, e.TokenTreatment(word("RUST")))
}

func TestTitleCompletionUnlocksDocument(t *testing.T) {
	doc := &article.Document{
		Title: []article.Token{word("Red"), nonWord(" "), word("Panda")},
		Content: []article.Section{
			article.Heading{Level: 2, Tokens: []article.Token{word("Habitat")}},
			article.OrderedList{Items: []article.Item{
				{article.Paragraph{Tokens: []article.Token{word("bamboo"), nonWord("!")}}},
			}},
		},
	}
	e := New()
	e.Load(doc)

	e.RegisterGuess("red")
	assert.False(t, e.TitleComplete())
	assert.Equal(t, Blank, e.TokenTreatment(word("bamboo")))

	e.RegisterGuess("PANDA")
	require.True(t, e.TitleComplete())
	doc.Walk(func(tok article.Token) bool {
		assert.NotEqual(t, Blank, e.TokenTreatment(tok), "token %q", tok.Text)
		return true
	})

	e.ToggleSelection("habitat")
	assert.Equal(t, Highlight, e.TokenTreatment(word("Habitat")), "highlight still wins once unlocked")
}

func TestTitleCompleteIsRecomputed(t *testing.T) {
	e := New()
	e.Load(rustDoc())
	e.RegisterGuess("rust")
	require.True(t, e.TitleComplete())

	e.Load(rustDoc())
	assert.False(t, e.TitleComplete(), "reload clears the guesses it was derived from")
}

func TestCountOccurrences(t *testing.T) {
	e := New()
	e.Load(rustDoc())

	n, ok := e.CountOccurrences("rust")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = e.CountOccurrences(" RUST ")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = e.CountOccurrences("slow")
	assert.True(t, ok)
	assert.Zero(t, n)

	n, ok = e.CountOccurrences(" ")
	assert.True(t, ok)
	assert.Zero(t, n, "non-words are never counted")
}

func TestCountOccurrencesDescendsIntoLists(t *testing.T) {
	fox := article.Paragraph{Tokens: []article.Token{word("fox")}}
	doc := &article.Document{
		Content: []article.Section{
			article.UnorderedList{Items: []article.Item{{fox}}},
			article.OrderedList{Items: []article.Item{
				{article.UnorderedList{Items: []article.Item{{fox}, {}}}},
			}},
			article.Heading{Level: 3, Tokens: []article.Token{word("Fox")}},
		},
	}
	e := New()
	e.Load(doc)

	n, ok := e.CountOccurrences("fox")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	e.Load(&article.Document{Content: []article.Section{
		article.UnorderedList{Items: []article.Item{{fox}}},
	}})
	n, _ = e.CountOccurrences("fox")
	assert.Equal(t, 1, n)
}

func TestEmptyDocument(t *testing.T) {
	e := New()
	e.Load(&article.Document{Title: []article.Token{}, Content: []article.Section{}})

	n, ok := e.CountOccurrences("anything")
	assert.True(t, ok)
	assert.Zero(t, n)
	assert.True(t, e.TitleComplete(), "no title words means nothing left to guess")
	assert.Equal(t, Show, e.TokenTreatment(word("anything")))
}

func TestTally(t *testing.T) {
	e := New()
	e.Load(rustDoc())
	e.RegisterGuess("slow")
	e.RegisterGuess("Rust")
	assert.Equal(t, []Tally{
		{Guess: "rust", Occurrences: 2},
		{Guess: "slow", Occurrences: 0},
	}, e.Tally())
}

func TestParsedDocumentEndToEnd(t *testing.T) {
	doc := article.Parse("Red fox", "The '''red fox''' is a [[fox]].\n* Foxes eat mice.\n** The fox hunts.")
	e := New()
	e.Load(doc)

	n, _ := e.CountOccurrences("FOX")
	assert.Equal(t, 4, n)

	e.RegisterGuess("red")
	e.RegisterGuess("fox")
	assert.True(t, e.TitleComplete())
}

func TestTreatmentText(t *testing.T) {
	for tr, name := range map[Treatment]string{Blank: "blank", Show: "show", Highlight: "highlight"} {
		text, err := tr.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, name, string(text))

		var back Treatment
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, tr, back)
	}
	var bad Treatment
	assert.Error(t, bad.UnmarshalText([]byte("hidden")))
}

func TestSessionSerializesAccess(t *testing.T) {
	s := NewSession("en")
	assert.Len(t, s.ID, 16)
	assert.Equal(t, "en", s.Lang)

	s.Do(func(e *Engine) { e.Load(rustDoc()) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(func(e *Engine) { e.RegisterGuess("rust") })
		}()
	}
	wg.Wait()

	s.Do(func(e *Engine) {
		assert.Equal(t, []string{"rust"}, e.Guesses())
	})
	assert.NotEqual(t, s.ID, NewSession("en").ID)
}
