package utils

import "strings"

// ParseOrigins reads a comma-separated list of allowed origins.
// Entries are trimmed, lowercased and stripped of trailing slashes, and
// repeats are dropped. A "*" anywhere collapses the list to {"*"}.
// Returns nil when no entry remains.
func ParseOrigins(s string) []string {
	var origins []string
	seen := make(map[string]bool)
	for _, v := range strings.Split(s, ",") {
		origin := strings.TrimRight(strings.ToLower(strings.TrimSpace(v)), "/")
		if origin == "" || seen[origin] {
			continue
		}
		if origin == "*" {
			return []string{"*"}
		}
		seen[origin] = true
		origins = append(origins, origin)
	}
	return origins
}
