package models

// IDType names the identifier scheme a conversion was requested with.
type IDType string

const (
	IDTypePMID  IDType = "pmid"
	IDTypePMCID IDType = "pmcid"
)

// ConvertResult is the outcome of converting one article identifier.
type ConvertResult struct {
	ID             string `json:"id" yaml:"id"`
	IDType         IDType `json:"id_type" yaml:"id_type"`
	PMCID          string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`
	Markdown       string `json:"markdown,omitempty" yaml:"markdown,omitempty"`
	HasSupplements bool   `json:"has_supplements" yaml:"has_supplements"`
	AbstractOnly   bool   `json:"abstract_only,omitempty" yaml:"abstract_only,omitempty"`
	Error          string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the conversion produced no markdown.
func (r ConvertResult) Failed() bool {
	return r.Markdown == ""
}
