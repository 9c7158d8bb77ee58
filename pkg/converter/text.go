package converter

import (
	"html"
	"strings"
)

// CleanText decodes character entities, collapses every whitespace run
// (newlines and tabs included) to a single space and trims both ends.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}
