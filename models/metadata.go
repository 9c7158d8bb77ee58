package models

// MetaKey names one recognized article descriptor.
type MetaKey string

const (
	MetaTitle           MetaKey = "title"
	MetaJournal         MetaKey = "journal"
	MetaDOI             MetaKey = "doi"
	MetaPMID            MetaKey = "pmid"
	MetaPMCID           MetaKey = "pmcid"
	MetaPublicationDate MetaKey = "publication_date"
	MetaPDFURL          MetaKey = "pdf_url"
	MetaAbstractURL     MetaKey = "abstract_url"
	MetaFulltextURL     MetaKey = "fulltext_url"
)

// Metadata is the flat record read from an article's head descriptors.
// Keys that were not found are absent, never present with an empty value.
type Metadata struct {
	values  map[MetaKey]string
	authors []string
}

// NewMetadata copies values and authors into an immutable record.
// Empty values are dropped.
func NewMetadata(values map[MetaKey]string, authors []string) Metadata {
	m := Metadata{values: make(map[MetaKey]string, len(values))}
	for k, v := range values {
		if v != "" {
			m.values[k] = v
		}
	}
	if len(authors) > 0 {
		m.authors = append([]string(nil), authors...)
	}
	return m
}

// Get returns the value for key and whether it was found.
func (m Metadata) Get(key MetaKey) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Authors returns the authors in document order.
func (m Metadata) Authors() []string {
	return append([]string(nil), m.authors...)
}

// Has reports whether key was found.
func (m Metadata) Has(key MetaKey) bool {
	_, ok := m.values[key]
	return ok
}
