package supplement

import (
	"encoding/json"
	"strings"
)

// BioC JSON is either one collection or a list of collections:
//
//	[{"source": "BioC", "documents": [{"id": "file.pdf", "passages": [{"text": "..."}]}]}]
type biocCollection struct {
	Documents []json.RawMessage `json:"documents"`
}

type biocDocument struct {
	ID       string            `json:"id"`
	Passages []json.RawMessage `json:"passages"`
}

type biocPassage struct {
	Text any `json:"text"`
}

// ExtractDocuments pulls per-document passage text out of a BioC JSON payload.
// Malformed collections, documents and passages are skipped; documents with
// no text are dropped.
func ExtractDocuments(raw json.RawMessage) []Document {
	var collections []json.RawMessage
	if err := json.Unmarshal(raw, &collections); err != nil {
		collections = []json.RawMessage{raw}
	}

	var docs []Document
	for _, rawColl := range collections {
		var coll biocCollection
		if err := json.Unmarshal(rawColl, &coll); err != nil {
			continue
		}

		for _, rawDoc := range coll.Documents {
			var doc biocDocument
			if err := json.Unmarshal(rawDoc, &doc); err != nil {
				continue
			}

			var passages []string
			for _, rawPassage := range doc.Passages {
				var p biocPassage
				if err := json.Unmarshal(rawPassage, &p); err != nil {
					continue
				}
				if text, ok := p.Text.(string); ok && text != "" {
					passages = append(passages, text)
				}
			}
			if len(passages) == 0 {
				continue
			}

			filename := doc.ID
			if filename == "" {
				filename = "unknown"
			}
			docs = append(docs, Document{Filename: filename, Text: strings.Join(passages, "\n\n")})
		}
	}
	return docs
}
