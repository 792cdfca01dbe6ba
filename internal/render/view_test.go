package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/redactle/internal/article"
	"github.com/robalobadob/redactle/internal/game"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "____", Mask("Rust"))
	assert.Equal(t, "____", Mask("café"), "counts characters, not bytes")
}

func TestBuildEmpty(t *testing.T) {
	v := Build(game.New())
	assert.False(t, v.Loaded)
	assert.False(t, v.TitleComplete)
	assert.Empty(t, v.Title)
	assert.Empty(t, v.Sections)
	assert.Empty(t, v.Guesses)
}

func TestBuildMasksUnguessedWords(t *testing.T) {
	e := game.New()
	e.Load(article.Parse("Red panda", "The '''red panda''' eats bamboo.\n== Range ==\n* Nepal\n*# Sikkim"))
	e.RegisterGuess("red")
	e.RegisterGuess("eats")
	e.ToggleSelection("eats")

	v := Build(e)
	require.True(t, v.Loaded)
	assert.False(t, v.TitleComplete)
	assert.Equal(t, "Red _____", Text(v.Title))
	assert.Equal(t, "eats", v.Selected)

	require.Len(t, v.Sections, 3)
	p := v.Sections[0]
	assert.Equal(t, KindParagraph, p.Kind)
	assert.Equal(t, "___ red _____ eats ______.", Text(p.Tokens))
	assert.Equal(t, game.Highlight, p.Tokens[6].Treatment)
	assert.Equal(t, game.Blank, p.Tokens[0].Treatment)
	assert.True(t, p.Tokens[0].Word)
	assert.False(t, p.Tokens[1].Word)

	h := v.Sections[1]
	assert.Equal(t, KindHeading, h.Kind)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, "_____", Text(h.Tokens))

	l := v.Sections[2]
	assert.Equal(t, KindUnordered, l.Kind)
	require.Len(t, l.Items, 1)
	require.Len(t, l.Items[0], 2)
	assert.Equal(t, "_____", Text(l.Items[0][0].Tokens))
	assert.Equal(t, KindOrdered, l.Items[0][1].Kind)

	assert.Equal(t, []game.Tally{{Guess: "eats", Occurrences: 1}, {Guess: "red", Occurrences: 2}}, v.Guesses)
}

func TestBuildRevealsAllOnTitleComplete(t *testing.T) {
	e := game.New()
	e.Load(article.Parse("Octopus", "An octopus has eight arms."))
	e.RegisterGuess("Octopus")

	v := Build(e)
	assert.True(t, v.TitleComplete)
	assert.Equal(t, "An octopus has eight arms.", Text(v.Sections[0].Tokens))
}

func TestViewJSON(t *testing.T) {
	e := game.New()
	e.Load(article.Parse("Moon", "Moon."))
	b, err := json.Marshal(Build(e))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"loaded": true,
		"title": [{"text": "____", "word": true, "treatment": "blank"}],
		"sections": [{"kind": "paragraph", "tokens": [
			{"text": "____", "word": true, "treatment": "blank"},
			{"text": ".", "treatment": "show"}
		]}],
		"guesses": [],
		"titleComplete": false
	}`, string(b))
}
