package fetch

// ResultOutput is the structured output for a single identifier.
type ResultOutput struct {
	ID           string `json:"id" yaml:"id"`
	IDType       string `json:"id_type" yaml:"id_type"`
	PMCID        string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`
	Status       string `json:"status" yaml:"status"`
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FinalOutput is the structured output for the entire run.
type FinalOutput struct {
	Status  string         `json:"status" yaml:"status"`
	RunIDs  []int64        `json:"run_ids,omitempty" yaml:"run_ids,omitempty"`
	Results []ResultOutput `json:"results" yaml:"results"`
	Stats   Stats          `json:"stats" yaml:"stats"`
}

// Stats provides summary statistics for the run.
type Stats struct {
	TotalIDs         int     `json:"total_ids" yaml:"total_ids"`
	Converted        int     `json:"converted" yaml:"converted"`
	AbstractOnly     int     `json:"abstract_only" yaml:"abstract_only"`
	Skipped          int     `json:"skipped" yaml:"skipped"`
	Failed           int     `json:"failed" yaml:"failed"`
	Invalid          int     `json:"invalid" yaml:"invalid"`
	TotalTimeSeconds float64 `json:"total_time_seconds" yaml:"total_time_seconds"`
}
