package seotag

import (
	"strings"

	"golang.org/x/text/cases"
)

// keywordDenylist are characters stripped from each keyword.
const keywordDenylist = "\"'`[]{}()<>|\\/*?!#$%^=~"

// ProcessKeywords splits, cleans and de-duplicates a raw keyword string.
// Semicolons take priority over commas as the delimiter.
func ProcessKeywords(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}

	var parts []string
	switch {
	case strings.Contains(raw, ";"):
		parts = strings.Split(raw, ";")
	case strings.Contains(raw, ","):
		parts = strings.Split(raw, ",")
	default:
		parts = []string{raw}
	}

	fold := cases.Fold()
	seen := map[string]bool{}
	for _, p := range parts {
		k := cleanKeyword(p)
		if k == "" {
			continue
		}
		key := fold.String(k)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
	}
	return out
}

func cleanKeyword(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		if strings.ContainsRune(keywordDenylist, r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
