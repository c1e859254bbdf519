package pagekit

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	wordBoundary = regexp.MustCompile(`(\w)([A-Z])`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// titleize splits a CamelCase type name on word boundaries:
// "MyPageObject" becomes "My Page Object". Names already containing
// spaces pass through with their boundaries intact.
func titleize(name string) string {
	return wordBoundary.ReplaceAllString(name, "$1 $2")
}

// underscored replaces whitespace runs with single underscores,
// yielding the display form used to build keyword names.
func underscored(name string) string {
	return whitespace.ReplaceAllString(name, "_")
}

// snake converts an exported Go method name to its keyword-style form:
// "OpenBrowser" becomes "open_browser", "URL" becomes "url". Runs of
// uppercase stay one word.
func snake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
