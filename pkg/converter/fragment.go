package converter

import "strings"

// Fragment is an ordered block of rendered markdown lines for one logical
// unit (section, table, figure, reference list). Fragments concatenate in
// document order.
type Fragment struct {
	lines []string
}

// Line appends one line.
func (f *Fragment) Line(s string) {
	f.lines = append(f.lines, s)
}

// Blank appends an empty line.
func (f *Fragment) Blank() {
	f.lines = append(f.lines, "")
}

// Append adds an already rendered block. Empty blocks are ignored.
func (f *Fragment) Append(block string) {
	if block == "" {
		return
	}
	f.lines = append(f.lines, block)
}

// Block adds a rendered block followed by exactly one blank line. Trailing
// newlines of block are dropped first; blank blocks are ignored.
func (f *Fragment) Block(block string) {
	block = strings.TrimRight(block, "\n")
	if strings.TrimSpace(block) == "" {
		return
	}
	f.lines = append(f.lines, block, "")
}

// Empty reports whether nothing has been written.
func (f *Fragment) Empty() bool {
	return len(f.lines) == 0
}

// String joins the lines with newlines, without a trailing newline.
func (f *Fragment) String() string {
	return strings.TrimRight(strings.Join(f.lines, "\n"), "\n")
}
