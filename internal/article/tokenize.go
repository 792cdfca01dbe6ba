package article

import (
	"unicode"
	"unicode/utf8"
)

// Tokenize splits text into alternating Word and NonWord tokens.
// Concatenating the Text of the result reproduces text byte for byte;
// invalid UTF-8 bytes are kept and classified as NonWord.
func Tokenize(text string) []Token {
	var out []Token
	start := 0
	kind := Kind(0)
	for pos := 0; pos < len(text); {
		r, w := utf8.DecodeRuneInString(text[pos:])
		k := NonWord
		if isWordRune(r) {
			k = Word
		}
		if kind != 0 && k != kind {
			out = append(out, Token{Kind: kind, Text: text[start:pos]})
			start = pos
		}
		kind = k
		pos += w
	}
	if start < len(text) {
		out = append(out, Token{Kind: kind, Text: text[start:]})
	}
	return out
}

// isWordRune reports whether r is word-constituent: letters, combining marks,
// decimal digits, connector punctuation and the zero-width joiners.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) ||
		unicode.Is(unicode.M, r) ||
		unicode.Is(unicode.Nd, r) ||
		unicode.Is(unicode.Pc, r) ||
		unicode.Is(unicode.Join_Control, r)
}
