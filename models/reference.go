package models

// LinkKind classifies a link found in a bibliography entry.
type LinkKind int

const (
	LinkOther LinkKind = iota
	LinkDOI
	LinkPMC
	LinkPubMed
)

// ReferenceLink is one classified link of a reference entry.
type ReferenceLink struct {
	Kind LinkKind
	URL  string
	Text string
}

// Label returns the markdown link label for the link.
func (l ReferenceLink) Label() string {
	switch l.Kind {
	case LinkDOI:
		return "DOI"
	case LinkPMC:
		return "PMC"
	case LinkPubMed:
		return "PubMed"
	default:
		if l.Text == "" {
			return l.URL
		}
		return l.Text
	}
}

// Reference is one numbered bibliography entry. Ordinal is positional.
type Reference struct {
	Ordinal  int
	Citation string
	Links    []ReferenceLink
}
