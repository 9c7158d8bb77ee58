package converter

import (
	"regexp"
	"strings"
)

var blankRunPattern = regexp.MustCompile(`\n{3,}`)

// Assemble joins the non-blank fragments with one blank line and cleans
// the result.
func Assemble(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, frag := range fragments {
		if strings.TrimSpace(frag) == "" {
			continue
		}
		parts = append(parts, frag)
	}
	return CleanMarkdown(strings.Join(parts, "\n\n"))
}

// CleanMarkdown collapses runs of three or more newlines to one blank line
// and makes the document end with exactly one newline.
func CleanMarkdown(md string) string {
	md = blankRunPattern.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md) + "\n"
}
