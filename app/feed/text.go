package feed

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fold returns s composed to NFC and lowercased. Callers compare folded
// strings only with other folded strings.
func Fold(s string) string {
	// cases.Caser keeps state, so a fresh one per call.
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// IsWordRune reports whether r belongs to a word: letters, numbers and
// combining marks of any script, plus underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

// StripNonWord removes every rune that is not a word rune.
func StripNonWord(s string) string {
	return strings.Map(func(r rune) rune {
		if IsWordRune(r) {
			return r
		}
		return -1
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
