package pipeline

import "strings"

// Prefix labels articles that start with Value.
type Prefix struct {
	Value string
	Label string
}

// PrefixTable resolves an article to a store label. Entries are tried in
// order and the first matching prefix wins, so longer prefixes sharing a
// stem must come first. Matching is case-sensitive.
type PrefixTable []Prefix

// Label returns the label of the first prefix of article, or "".
func (p PrefixTable) Label(article string) string {
	a := strings.TrimSpace(article)
	for _, e := range p {
		if e.Value != "" && strings.HasPrefix(a, e.Value) {
			return e.Label
		}
	}
	return ""
}
