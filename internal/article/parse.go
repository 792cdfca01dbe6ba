// internal/article/parse.go
//
// Best-effort structural extraction of article markup.
// Responsibilities:
//   - Strip citations, media, templates, tables and inline formatting.
//   - Recognize headings (levels clamped to 1–6), paragraphs and nested lists.
//   - Tokenize every heading and paragraph text run, and the title.
//
// Notes:
//   - Parsing never fails. Anything not recognized as structure is kept as
//     paragraph text, and unterminated constructs are kept literally.
//   - Parse handles MediaWiki wikitext; ParseHTML handles rendered article HTML.

package article

import (
	"strings"
)

// Format names the markup language of an article body.
type Format string

const (
	Wikitext Format = "wikitext"
	HTML     Format = "html"
)

// ParseFormat parses markup written in format. Unknown formats are read as wikitext.
func ParseFormat(format Format, title, markup string) *Document {
	if format == HTML {
		return ParseHTML(title, markup)
	}
	return Parse(title, markup)
}

// Parse builds a Document from a title and a wikitext body.
func Parse(title, markup string) *Document {
	doc := &Document{Title: Tokenize(title), Content: []Section{}}
	if strings.TrimSpace(markup) == "" {
		return doc
	}
	var p blockParser
	for _, line := range strings.Split(preprocess(markup), "\n") {
		p.line(strings.TrimRight(line, " \t\r"))
	}
	p.flush()
	doc.Content = append(doc.Content, p.out...)
	return doc
}

// listLine is one line of a wikitext list: its marker prefix and its text.
type listLine struct {
	prefix string
	text   string
}

// blockParser groups wikitext lines into sections.
type blockParser struct {
	out  []Section
	para []string
	list []listLine
}

func (p *blockParser) line(line string) {
	switch {
	case strings.TrimSpace(line) == "":
		p.flush()
	case isRule(line):
		p.flush()
	case p.heading(line):
	case listPrefix(line) != "":
		p.flushParagraph()
		prefix := listPrefix(line)
		p.list = append(p.list, listLine{prefix: prefix, text: line[len(prefix):]})
	default:
		p.flushList()
		p.para = append(p.para, line)
	}
}

// heading consumes line if it is a balanced =heading= line.
func (p *blockParser) heading(line string) bool {
	open := len(line) - len(strings.TrimLeft(line, "="))
	close := len(line) - len(strings.TrimRight(line, "="))
	if open == 0 || close == 0 || open == len(line) {
		return false
	}
	level := min(open, close)
	text := strings.TrimSpace(line[level : len(line)-level])
	if text == "" {
		return false
	}
	p.flush()
	if flat := flattenInline(text); flat != "" {
		p.out = append(p.out, NewHeading(level, flat))
	}
	return true
}

func (p *blockParser) flush() {
	p.flushParagraph()
	p.flushList()
}

func (p *blockParser) flushParagraph() {
	if len(p.para) == 0 {
		return
	}
	if s, ok := paragraph(strings.Join(p.para, " ")); ok {
		p.out = append(p.out, s)
	}
	p.para = p.para[:0]
}

func (p *blockParser) flushList() {
	if len(p.list) == 0 {
		return
	}
	p.out = append(p.out, buildList(p.list, 0)...)
	p.list = nil
}

// buildList turns lines whose prefixes are all longer than depth into
// sections. Runs sharing the marker at position depth form one list;
// ':' and ';' runs become plain paragraphs at that depth.
func buildList(lines []listLine, depth int) []Section {
	var out []Section
	for i := 0; i < len(lines); {
		marker := lines[i].prefix[depth]
		j := i + 1
		for j < len(lines) && sameList(lines[j].prefix[depth], marker) {
			j++
		}
		items := buildItems(lines[i:j], depth)
		switch marker {
		case '*':
			out = append(out, UnorderedList{Items: items})
		case '#':
			out = append(out, OrderedList{Items: items})
		default:
			for _, item := range items {
				out = append(out, item...)
			}
		}
		i = j
	}
	return out
}

// buildItems splits one list run into items. A line of exactly depth+1
// markers opens an item; deeper lines nest into the current item.
func buildItems(lines []listLine, depth int) []Item {
	var items []Item
	for i := 0; i < len(lines); {
		j := i + 1
		for j < len(lines) && len(lines[j].prefix) > depth+1 {
			j++
		}
		item := Item{}
		nested := lines[i:j]
		if len(lines[i].prefix) == depth+1 {
			if s, ok := paragraph(lines[i].text); ok {
				item = append(item, s)
			}
			nested = lines[i+1 : j]
		}
		if len(nested) > 0 {
			item = append(item, buildList(nested, depth+1)...)
		}
		items = append(items, item)
		i = j
	}
	return items
}

func sameList(a, b byte) bool {
	if a == b {
		return true
	}
	return isDefinition(a) && isDefinition(b)
}

func isDefinition(c byte) bool { return c == ':' || c == ';' }

func listPrefix(line string) string {
	n := 0
	for n < len(line) && strings.IndexByte("*#:;", line[n]) >= 0 {
		n++
	}
	return line[:n]
}

func isRule(line string) bool {
	return len(line) >= 4 && strings.Trim(line, "-") == ""
}

// paragraph flattens a wikitext run; runs with no visible text are dropped.
func paragraph(text string) (Paragraph, bool) {
	return textParagraph(flattenInline(text))
}

// textParagraph tokenizes already-plain text.
func textParagraph(text string) (Paragraph, bool) {
	text = collapseSpace(text)
	if text == "" {
		return Paragraph{}, false
	}
	return Paragraph{Tokens: Tokenize(text)}, true
}
