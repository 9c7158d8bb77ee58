package models

// HeaderSource records how a table's header row was obtained.
type HeaderSource int

const (
	HeaderExplicit    HeaderSource = iota // first row of an explicit header group
	HeaderPromoted                        // first body row promoted
	HeaderSynthesized                     // generated Category / Value N labels
)

func (h HeaderSource) String() string {
	switch h {
	case HeaderExplicit:
		return "explicit"
	case HeaderPromoted:
		return "promoted"
	case HeaderSynthesized:
		return "synthesized"
	default:
		return "unknown"
	}
}

// Table is a rectangular markdown grid. Header and every row hold exactly
// Columns cells.
type Table struct {
	Header       []string
	Rows         [][]string
	Columns      int
	HeaderSource HeaderSource
}
