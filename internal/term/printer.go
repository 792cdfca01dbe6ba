package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/redactle/internal/game"
	"github.com/robalobadob/redactle/internal/render"
)

// Styles decide how treatments look on the terminal. On a writer that is
// not a color terminal every style renders plain text.
type Styles struct {
	Blank     lipgloss.Style
	Highlight lipgloss.Style
	Heading   lipgloss.Style
	Title     lipgloss.Style
	Notice    lipgloss.Style
}

// NewStyles builds styles for the color profile of w.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Blank:     r.NewStyle().Faint(true),
		Highlight: r.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")),
		Heading:   r.NewStyle().Bold(true),
		Title:     r.NewStyle().Bold(true).Underline(true),
		Notice:    r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// PrintView writes the article in v: title, then sections with headings
// as " == text == ", list items indented by depth.
func PrintView(w io.Writer, v render.View, st Styles) {
	if !v.Loaded {
		fmt.Fprintln(w, "(no article loaded)")
		return
	}
	fmt.Fprintf(w, "%s\n\n", st.Title.Render(tokens(v.Title, st)))
	printSections(w, v.Sections, st, 0)
}

func printSections(w io.Writer, sections []render.Section, st Styles, depth int) {
	indent := strings.Repeat("   ", depth)
	for _, s := range sections {
		switch s.Kind {
		case render.KindHeading:
			marker := strings.Repeat("=", s.Level)
			fmt.Fprintf(w, "%s %s %s %s\n\n", indent, marker, st.Heading.Render(tokens(s.Tokens, st)), marker)
		case render.KindParagraph:
			fmt.Fprintf(w, "%s%s\n", indent, tokens(s.Tokens, st))
			if depth == 0 {
				fmt.Fprintln(w)
			}
		case render.KindUnordered, render.KindOrdered:
			for i, item := range s.Items {
				bullet := " * "
				if s.Kind == render.KindOrdered {
					bullet = fmt.Sprintf("%d. ", i+1)
				}
				fmt.Fprintf(w, "%s%s", indent, bullet)
				if len(item) == 0 {
					fmt.Fprintln(w)
					continue
				}
				// first block shares the bullet line; the rest nest below it
				first := item[0]
				if first.Kind == render.KindParagraph {
					fmt.Fprintln(w, tokens(first.Tokens, st))
					item = item[1:]
				} else {
					fmt.Fprintln(w)
				}
				printSections(w, item, st, depth+1)
			}
			if depth == 0 {
				fmt.Fprintln(w)
			}
		}
	}
}

func tokens(toks []render.Token, st Styles) string {
	var b strings.Builder
	for _, t := range toks {
		switch t.Treatment {
		case game.Blank:
			b.WriteString(st.Blank.Render(t.Text))
		case game.Highlight:
			b.WriteString(st.Highlight.Render(t.Text))
		default:
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// PrintGuesses writes the guess panel, one "guess  count" row per guess,
// marking the selected one.
func PrintGuesses(w io.Writer, v render.View, st Styles) {
	if len(v.Guesses) == 0 {
		fmt.Fprintln(w, "(no guesses yet)")
		return
	}
	width := 0
	for _, g := range v.Guesses {
		if n := lipgloss.Width(g.Guess); n > width {
			width = n
		}
	}
	for _, g := range v.Guesses {
		name := g.Guess + strings.Repeat(" ", width-lipgloss.Width(g.Guess))
		if g.Guess == v.Selected {
			name = st.Highlight.Render(name)
		}
		fmt.Fprintf(w, "  %s  %d\n", name, g.Occurrences)
	}
}
