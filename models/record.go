package models

// Record maps one stored markdown file to the identifiers found in it.
type Record struct {
	PMID         string `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	PMCID        string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`
	URL          string `json:"url,omitempty" yaml:"url,omitempty"`
	MarkdownPath string `json:"markdown_path" yaml:"markdown_path"`

	// Enrichment
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Excerpt  string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	SiteName string `json:"site_name,omitempty" yaml:"site_name,omitempty"`
}

// MissingFields lists which of pmid, pmcid and url are empty.
func (r Record) MissingFields() []string {
	var missing []string
	if r.PMID == "" {
		missing = append(missing, "pmid")
	}
	if r.PMCID == "" {
		missing = append(missing, "pmcid")
	}
	if r.URL == "" {
		missing = append(missing, "url")
	}
	return missing
}
