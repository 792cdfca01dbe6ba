package article

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skippedClasses mark rendered elements that carry no article prose.
var skippedClasses = map[string]bool{
	"reference":        true,
	"references":       true,
	"reflist":          true,
	"mw-ref":           true,
	"mw-editsection":   true,
	"mw-empty-elt":     true,
	"mwe-math-element": true,
	"navbox":           true,
	"noprint":          true,
	"metadata":         true,
	"infobox":          true,
	"thumb":            true,
	"gallery":          true,
}

var skippedAtoms = map[atom.Atom]bool{
	atom.Table:    true,
	atom.Figure:   true,
	atom.Img:      true,
	atom.Picture:  true,
	atom.Audio:    true,
	atom.Video:    true,
	atom.Style:    true,
	atom.Script:   true,
	atom.Noscript: true,
	atom.Link:     true,
	atom.Meta:     true,
	atom.Math:     true,
	atom.Svg:      true,
	atom.Head:     true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// containerAtoms are block elements whose children are read as blocks.
var containerAtoms = map[atom.Atom]bool{
	atom.Html:       true,
	atom.Body:       true,
	atom.Div:        true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Main:       true,
	atom.Aside:      true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Blockquote: true,
	atom.Center:     true,
	atom.Details:    true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Dd:         true,
	atom.Pre:        true,
}

// ParseHTML builds a Document from a title and rendered article HTML.
func ParseHTML(title, markup string) *Document {
	doc := &Document{Title: Tokenize(title), Content: []Section{}}
	if strings.TrimSpace(markup) == "" {
		return doc
	}
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return Parse(title, markup)
	}
	doc.Content = append(doc.Content, htmlBlocks(root)...)
	return doc
}

// blockBuilder collects sections from sibling nodes. Loose inline content
// between blocks is gathered into a paragraph.
type blockBuilder struct {
	out    []Section
	inline strings.Builder
}

func htmlBlocks(parent *html.Node) []Section {
	var b blockBuilder
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		b.add(c)
	}
	b.flush()
	return b.out
}

func (b *blockBuilder) flush() {
	if s, ok := textParagraph(b.inline.String()); ok {
		b.out = append(b.out, s)
	}
	b.inline.Reset()
}

func (b *blockBuilder) add(n *html.Node) {
	switch {
	case n.Type == html.TextNode:
		b.inline.WriteString(n.Data)
		return
	case n.Type != html.ElementNode, skipNode(n):
		return
	}
	if level, ok := headingLevels[n.DataAtom]; ok {
		b.flush()
		if text := collapseSpace(nodeText(n)); text != "" {
			b.out = append(b.out, NewHeading(level, text))
		}
		return
	}
	switch {
	case n.DataAtom == atom.P:
		b.flush()
		if s, ok := textParagraph(nodeText(n)); ok {
			b.out = append(b.out, s)
		}
	case n.DataAtom == atom.Ul:
		b.flush()
		b.out = append(b.out, UnorderedList{Items: htmlItems(n)})
	case n.DataAtom == atom.Ol:
		b.flush()
		b.out = append(b.out, OrderedList{Items: htmlItems(n)})
	case containerAtoms[n.DataAtom], n.DataAtom == atom.Li:
		b.flush()
		b.out = append(b.out, htmlBlocks(n)...)
	case n.DataAtom == atom.Br:
		b.inline.WriteByte(' ')
	default:
		b.inline.WriteString(nodeText(n))
	}
}

// htmlItems reads the items of a ul/ol. Stray children with text become
// items of their own.
func htmlItems(list *html.Node) []Item {
	items := []Item{}
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			if !skipNode(c) {
				items = append(items, Item(htmlBlocks(c)))
			}
			continue
		}
		var b blockBuilder
		b.add(c)
		b.flush()
		if len(b.out) > 0 {
			items = append(items, Item(b.out))
		}
	}
	return items
}

// nodeText concatenates the readable text below n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
			return
		case n.Type != html.ElementNode:
			return
		case skipNode(n):
			return
		case n.DataAtom == atom.Br:
			sb.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if !isInline(n) {
			sb.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return sb.String()
}

func isInline(n *html.Node) bool {
	if _, ok := headingLevels[n.DataAtom]; ok {
		return false
	}
	return !containerAtoms[n.DataAtom] && n.DataAtom != atom.P && n.DataAtom != atom.Li &&
		n.DataAtom != atom.Ul && n.DataAtom != atom.Ol
}

func skipNode(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if skippedAtoms[n.DataAtom] {
		return true
	}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "class":
			for _, class := range strings.Fields(attr.Val) {
				if skippedClasses[class] {
					return true
				}
			}
		case "typeof":
			if strings.HasPrefix(attr.Val, "mw:File") {
				return true
			}
		}
	}
	return false
}
