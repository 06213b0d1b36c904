package producers

import (
	"strings"
	"unicode"
)

// toHTMLCase converts a Pascal-cased name to the lowercase kebab-case HTML uses:
// InputTagHelper becomes input-tag-helper and HTMLElement becomes html-element.
func toHTMLCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	sb.Grow(len(name) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || ((unicode.IsLetter(prev) || unicode.IsDigit(prev)) && nextLower) {
				sb.WriteByte('-')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}
