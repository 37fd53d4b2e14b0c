package api

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLen = 32

// deriveSlug lowercases name, replaces runs of non-alphanumeric characters
// with a single "-", trims leading/trailing "-", and truncates to 32
// characters (spec §4.4). Callers must reject an empty result with 400.
func deriveSlug(name string) string {
	s := strings.ToLower(name)
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
		s = strings.TrimRight(s, "-")
	}
	return s
}
