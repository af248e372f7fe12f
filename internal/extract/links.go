package extract

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]>"']+`)

// Links returns the distinct http(s) URLs in text, in order of appearance
func Links(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, u := range matches {
		// Clean up trailing punctuation
		u = strings.TrimRight(u, ".,;:!?")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
	}

	return unique
}
