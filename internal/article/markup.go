package article

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// droppedElements never contribute readable text: citations, media, formulas.
var droppedElements = map[string]bool{
	"ref":             true,
	"references":      true,
	"gallery":         true,
	"imagemap":        true,
	"math":            true,
	"chem":            true,
	"ce":              true,
	"score":           true,
	"timeline":        true,
	"graph":           true,
	"mapframe":        true,
	"maplink":         true,
	"syntaxhighlight": true,
	"source":          true,
	"templatestyles":  true,
	"templatedata":    true,
}

// wikiTags are the extension tags MediaWiki accepts besides plain HTML.
var wikiTags = map[string]bool{
	"nowiki":      true,
	"pre":         true,
	"poem":        true,
	"onlyinclude": true,
	"includeonly": true,
	"noinclude":   true,
	"section":     true,
	"indicator":   true,
}

var (
	apostropheRun = regexp.MustCompile(`'{2,}`)
	magicWord     = regexp.MustCompile(`__[A-Z]+__`)
)

var droppedNamespaces = []string{"file:", "image:", "media:", "category:"}

// preprocess removes the multi-line constructs that would otherwise break
// line-based block recognition.
func preprocess(markup string) string {
	s := shieldNowiki(markup)
	s = stripElements(s)
	s = replaceBalanced(s, "{{", "}}", func(string) string { return "" })
	s = replaceBalanced(s, "{|", "|}", func(string) string { return "" })
	return magicWord.ReplaceAllString(s, "")
}

// nowikiEscaper turns markup punctuation into character references, which
// no later pass treats as syntax and stripTags decodes back.
var nowikiEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"{", "&#123;",
	"}", "&#125;",
	"[", "&#91;",
	"]", "&#93;",
	"|", "&#124;",
	"'", "&#39;",
	"_", "&#95;",
	"=", "&#61;",
	"*", "&#42;",
	"#", "&#35;",
	":", "&#58;",
	";", "&#59;",
)

// shieldNowiki replaces every closed <nowiki>...</nowiki> with its escaped
// body so the literal text survives template, link and tag removal.
func shieldNowiki(s string) string {
	const open, close = "<nowiki>", "</nowiki>"
	var b strings.Builder
	for {
		i := indexFold(s, open)
		if i < 0 {
			break
		}
		j := indexFold(s[i+len(open):], close)
		if j < 0 {
			break
		}
		b.WriteString(s[:i])
		b.WriteString(nowikiEscaper.Replace(s[i+len(open) : i+len(open)+j]))
		s = s[i+len(open)+j+len(close):]
	}
	b.WriteString(s)
	return b.String()
}

// indexFold is strings.Index with ASCII case folding of sub.
func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// stripElements drops comments and the content of droppedElements.
// An element that is never closed is written back so its text survives.
func stripElements(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var out, held strings.Builder
	depth := 0
	for {
		tt := z.Next()
		raw := string(z.Raw())
		if tt == html.ErrorToken {
			// an unterminated tag at EOF is reported with its partial raw text
			if depth > 0 {
				held.WriteString(raw)
			} else {
				out.WriteString(raw)
			}
			break
		}
		switch tt {
		case html.CommentToken:
			if !strings.HasPrefix(raw, "<!--") {
				// "</3", "<!x>", "<?x": the tokenizer calls these comments, readers see text
				break
			}
			if !strings.HasSuffix(raw, "-->") {
				raw = strings.TrimPrefix(raw, "<!--")
				break
			}
			if depth > 0 {
				held.WriteString(raw)
			}
			continue
		case html.StartTagToken:
			name, _ := z.TagName()
			if droppedElements[string(name)] {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if droppedElements[string(name)] {
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					held.Reset()
					continue
				}
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if droppedElements[string(name)] {
				continue
			}
		}
		if depth > 0 {
			held.WriteString(raw)
		} else {
			out.WriteString(raw)
		}
	}
	out.WriteString(held.String())
	return out.String()
}

// replaceBalanced replaces every balanced open…close span with repl(inner).
// Spans nest; an opener without a matching closer is kept as literal text.
func replaceBalanced(s, open, close string, repl func(inner string) string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, open)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := matchClose(s[i:], open, close)
		if end < 0 {
			b.WriteString(s[:i+len(open)])
			s = s[i+len(open):]
			continue
		}
		b.WriteString(s[:i])
		b.WriteString(repl(s[i+len(open) : i+end-len(close)]))
		s = s[i+end:]
	}
}

// matchClose returns the offset just past the closer matching the opener at
// the start of s, or -1.
func matchClose(s, open, close string) int {
	depth := 0
	for j := 0; j < len(s); {
		switch {
		case strings.HasPrefix(s[j:], open):
			depth++
			j += len(open)
		case strings.HasPrefix(s[j:], close):
			depth--
			j += len(close)
			if depth == 0 {
				return j
			}
		default:
			j++
		}
	}
	return -1
}

// flattenInline turns one block of wikitext into readable plain text.
func flattenInline(s string) string {
	s = replaceBalanced(s, "[[", "]]", linkText)
	s = externalLinks(s)
	s = apostropheRun.ReplaceAllString(s, "")
	s = stripTags(s)
	return collapseSpace(s)
}

// linkText renders the inner part of [[target|label]].
func linkText(inner string) string {
	target, label, piped := strings.Cut(inner, "|")
	lower := strings.ToLower(strings.TrimSpace(target))
	for _, ns := range droppedNamespaces {
		if strings.HasPrefix(lower, ns) {
			return ""
		}
	}
	if piped && strings.TrimSpace(label) != "" {
		return replaceBalanced(label, "[[", "]]", linkText)
	}
	return strings.TrimPrefix(strings.TrimSpace(target), ":")
}

var urlSchemes = []string{"http://", "https://", "ftp://", "//", "mailto:"}

// externalLinks rewrites [url label] to label and drops bare [url].
func externalLinks(s string) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(s, '[')
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		rest := s[i+1:]
		end := strings.IndexByte(rest, ']')
		if end < 0 || !hasScheme(rest) {
			b.WriteByte('[')
			s = rest
			continue
		}
		if _, label, ok := strings.Cut(rest[:end], " "); ok {
			b.WriteString(label)
		}
		s = rest[end+1:]
	}
}

func hasScheme(s string) bool {
	lower := strings.ToLower(s)
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// stripTags removes known HTML and extension tags, keeping their text, and
// decodes character references. Unknown tag-like text is kept verbatim.
func stripTags(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			b.Write(z.Raw())
			return b.String()
		}
		switch tt {
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			name, hasAttr := z.TagName()
			switch {
			case tt != html.EndTagToken && hasAttr && !strings.Contains(raw, "="):
				// "a<b and c>d" is prose, not a tag with bare attributes
				b.WriteString(raw)
			case atom.Lookup(name) == atom.Br, droppedElements[string(name)]:
				b.WriteByte(' ')
			case atom.Lookup(name) != 0, wikiTags[string(name)]:
			default:
				b.WriteString(raw)
			}
		case html.CommentToken:
			if raw := z.Raw(); !bytes.HasPrefix(raw, []byte("<!--")) {
				b.Write(raw)
			}
		default:
			b.Write(z.Raw())
		}
	}
}

// collapseSpace trims s and folds every whitespace run into a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
