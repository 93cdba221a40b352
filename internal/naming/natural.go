// Package naming turns programmatic identifiers into display names.
package naming

import (
	"strings"
	"unicode"
)

// NaturalName returns a word-spaced version of name where each word starts
// with a capital letter. "NextAvailableDate" becomes "Next Available Date",
// "HTMLPage" becomes "HTML Page" and "version2" becomes "Version 2".
//
// A space is inserted before a character when, looking at its neighbours:
//   - it is upper case and the previous character is not, or
//   - it is upper case, the previous is upper case and the next is lower case, or
//   - it is a digit and the previous character is not.
//
// No space is inserted after an existing space. The first character is
// always upper cased; names of length one or less are upper cased whole.
func NaturalName(name string) string {
	runes := []rune(name)
	if len(runes) <= 1 {
		return strings.ToUpper(name)
	}

	var b strings.Builder
	b.Grow(len(name) + 4)

	runes[0] = unicode.ToUpper(runes[0])
	b.WriteRune(runes[0])

	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		next, hasNext := rune(0), i+1 < len(runes)
		if hasNext {
			next = runes[i+1]
		}

		if prev != ' ' && wordStartsAt(prev, cur, next, hasNext) {
			b.WriteByte(' ')
		}
		b.WriteRune(cur)
	}
	return b.String()
}

func wordStartsAt(prev, cur, next rune, hasNext bool) bool {
	switch {
	case unicode.IsUpper(cur) && !unicode.IsUpper(prev):
		return true
	case unicode.IsUpper(cur) && unicode.IsUpper(prev) && hasNext && unicode.IsLower(next):
		return true
	case unicode.IsDigit(cur) && !unicode.IsDigit(prev):
		return true
	}
	return false
}

// NaturalNames maps NaturalName over names, preserving order.
func NaturalNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NaturalName(n)
	}
	return out
}

// SimpleName isolates the type name from a qualified class name such as
// "github.com/acme/shop.Customer" or "java.lang.String".
func SimpleName(className string) string {
	if i := strings.LastIndexAny(className, "./"); i >= 0 {
		return className[i+1:]
	}
	return className
}
