package utils

import (
	"regexp"
	"strings"
)

var (
	slugInvalid    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugDashRepeat = regexp.MustCompile(`-+`)
)

// GenerateSlug: "Joe's Pizza & Grill" -> "joes-pizza-grill"
func GenerateSlug(name string) string {
	s := strings.ToLower(name)
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashRepeat.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
