package markdown

import "strings"

// Entity delimiters of the legacy Markdown mode, see
// https://core.telegram.org/bots/api#markdown-style.
const legacySpecialChars = `*_[]`

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var legacyLookup = func() [256]bool {
	var m [256]bool
	for i := range len(legacySpecialChars) {
		m[legacySpecialChars[i]] = true
	}
	return m
}()

// StripLegacy removes every legacy Markdown entity delimiter so the text
// always parses in ParseMode "Markdown".
func StripLegacy(input string) string {
	charsToStrip := 0

	for i := range len(input) {
		if legacyLookup[input[i]] {
			charsToStrip++
		}
	}
	if charsToStrip == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) - charsToStrip)

	for i := range len(input) {
		if c := input[i]; !legacyLookup[c] {
			b.WriteByte(c)
		}
	}

	return b.String()
}

// HasLegacyEntities reports whether the input contains any legacy Markdown
// entity delimiter.
func HasLegacyEntities(input string) bool {
	return strings.ContainsAny(input, legacySpecialChars)
}
