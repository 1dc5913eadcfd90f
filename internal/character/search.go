package character

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Search keeps the characters whose name contains every whitespace-separated
// token of query. Tokens and names are both lowercased before comparing. A blank query returns list
// itself. Order is preserved.
func Search(list []Summary, query string) []Summary {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return list
	}

	// a Caser carries state and must not be shared between goroutines
	lower := cases.Lower(language.Und)
	for i, token := range tokens {
		tokens[i] = lower.String(token)
	}

	matches := make([]Summary, 0)
	for _, c := range list {
		if containsAll(lower.String(c.Name), tokens) {
			matches = append(matches, c)
		}
	}
	return matches
}

func containsAll(name string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(name, token) {
			return false
		}
	}
	return true
}
