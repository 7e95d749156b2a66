package feed

import (
	"strings"
	"unicode/utf8"
)

// Matcher tests text against an ordered keyword list. A keyword or phrase
// matches only as a whole: it may not continue a larger word on either side.
type Matcher struct {
	keywords []string
}

func NewMatcher(keywords []string) *Matcher {
	folded := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		folded = append(folded, Fold(keyword))
	}
	return &Matcher{keywords: folded}
}

func (m *Matcher) Matches(text string) bool {
	_, ok := m.Match(text)
	return ok
}

// Match returns the first keyword in list order found in text.
func (m *Matcher) Match(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	text = Fold(text)
	for _, keyword := range m.keywords {
		if containsWord(text, keyword) {
			return keyword, true
		}
	}
	return "", false
}

// MatchItem accepts an item when either its title or its description matches.
func (m *Matcher) MatchItem(item Item) (string, bool) {
	if keyword, ok := m.Match(item.Title); ok {
		return keyword, true
	}
	return m.Match(item.Description)
}

func containsWord(text, keyword string) bool {
	first, _ := utf8.DecodeRuneInString(keyword)
	last, _ := utf8.DecodeLastRuneInString(keyword)
	checkBefore := IsWordRune(first)
	checkAfter := IsWordRune(last)

	offset := 0
	for offset <= len(text)-len(keyword) {
		idx := strings.Index(text[offset:], keyword)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(keyword)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])

		beforeOK := !checkBefore || start == 0 || !IsWordRune(before)
		afterOK := !checkAfter || end == len(text) || !IsWordRune(after)
		if beforeOK && afterOK {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}
