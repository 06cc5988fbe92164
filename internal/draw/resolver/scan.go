package resolver

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// token is one reference occurrence found by a scan.
type token struct {
	start, end int // byte span of the whole token, end exclusive
	name       string
}

// isLineBreak reports whether r terminates a token name.
func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

// matchWithReplacement matches "{%name}" at s[i:]. The name runs up to the
// first "}" and may not span a line break.
func matchWithReplacement(s string, i int) (token, bool) {
	if !strings.HasPrefix(s[i:], "{%") {
		return token{}, false
	}
	for j := i + 2; j < len(s); {
		r, size := utf8.DecodeRuneInString(s[j:])
		switch {
		case r == '}':
			return token{start: i, end: j + 1, name: strings.TrimSpace(s[i+2 : j])}, true
		case isLineBreak(r):
			return token{}, false
		}
		j += size
	}
	return token{}, false
}

// matchWithoutReplacement matches "{name}" at s[i:] where the character after
// "{" is not "%". Whitespace, including line breaks, may surround the name;
// the name itself may not span a line break.
func matchWithoutReplacement(s string, i int) (token, bool) {
	if s[i] != '{' || i+1 >= len(s) || s[i+1] == '%' {
		return token{}, false
	}
	k := skipSpace(s, i+1)
	for j := k; j < len(s); {
		r, size := utf8.DecodeRuneInString(s[j:])
		switch {
		case r == '}':
			return token{start: i, end: j + 1, name: strings.TrimSpace(s[k:j])}, true
		case isLineBreak(r):
			if e := skipSpace(s, j); e < len(s) && s[e] == '}' {
				return token{start: i, end: e + 1, name: strings.TrimSpace(s[k:j])}, true
			}
			return token{}, false
		}
		j += size
	}
	return token{}, false
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) && r != '\uFEFF' {
			break
		}
		i += size
	}
	return i
}

// replaceTokens substitutes every non-overlapping match of match in s, left
// to right. Substituted text is not rescanned within the same call.
func replaceTokens(s string, match func(string, int) (token, bool), subst func(name string) (string, error)) (string, int, error) {
	var b strings.Builder
	last, n := 0, 0
	for i := 0; i < len(s); {
		if s[i] != '{' {
			i++
			continue
		}
		tok, ok := match(s, i)
		if !ok {
			i++
			continue
		}
		text, err := subst(tok.name)
		if err != nil {
			return "", n, err
		}
		b.WriteString(s[last:tok.start])
		b.WriteString(text)
		last, i = tok.end, tok.end
		n++
	}
	if n == 0 {
		return s, 0, nil
	}
	b.WriteString(s[last:])
	return b.String(), n, nil
}

// hasTokens reports whether s contains any reference token.
func hasTokens(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if _, ok := matchWithReplacement(s, i); ok {
			return true
		}
		if _, ok := matchWithoutReplacement(s, i); ok {
			return true
		}
	}
	return false
}
