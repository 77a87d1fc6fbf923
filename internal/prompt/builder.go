package prompt

import (
	"regexp"
	"strings"
	"unicode"
)

var repeatedCommas = regexp.MustCompile(`,( *,)+`)

// isEdge reports characters stripped from both ends of a prompt.
func isEdge(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '"', '\'', '`', '„', '“', '”', '‘', '’', '«', '»', ',':
		return true
	}
	return false
}

// Build normalizes a description into a prompt of at most r.MaxLength
// characters. It is pure and idempotent: Build(Build(x)) == Build(x).
func (r Rules) Build(description string) string {
	s := description
	for denylist.MatchString(s) {
		s = denylist.ReplaceAllString(s, "")
	}

	s = strings.Join(strings.Fields(s), " ")
	s = repeatedCommas.ReplaceAllString(s, ",")
	s = strings.TrimFunc(s, isEdge)

	if r.MaxLength > 0 {
		s = truncate(s, r.MaxLength)
		s = strings.TrimFunc(s, isEdge)
	}
	return s
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Preview returns at most n runes of s for log lines.
func Preview(s string, n int) string {
	p := truncate(s, n)
	if len(p) < len(s) {
		return p + "…"
	}
	return p
}
