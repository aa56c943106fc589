package util

import "strings"

// Truncate shortens s to at most max runes, appending "..." when content was
// cut. A max below 4 returns the bare prefix since the ellipsis would not
// fit.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	if max < 4 {
		return string(runes[:max])
	}

	return string(runes[:max-3]) + "..."
}

// TitleWords converts snake_case identifiers like "firm_pricing" into
// display form like "Firm Pricing".
func TitleWords(s string) string {
	words := strings.Split(s, "_")

	for i, word := range words {
		if word == "" {
			continue
		}

		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}
