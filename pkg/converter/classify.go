package converter

import "github.com/PuerkitoBio/goquery"

// ScanSignals holds the three independent markers of a scanned document.
type ScanSignals struct {
	ScannedPages bool // section.scanned-pages
	ScanPageMeta bool // <meta name="ncbi_type" content="scanpage">
	ScannedFig   bool // figure.fig-scanned
}

// Any reports whether at least one signal is set.
func (s ScanSignals) Any() bool {
	return s.ScannedPages || s.ScanPageMeta || s.ScannedFig
}

// DetectScanSignals checks doc for every scanned-document marker.
func DetectScanSignals(doc *goquery.Document) ScanSignals {
	return ScanSignals{
		ScannedPages: doc.Find("section.scanned-pages").Length() > 0,
		ScanPageMeta: doc.Find(`meta[name="ncbi_type"][content="scanpage"]`).Length() > 0,
		ScannedFig:   doc.Find("figure.fig-scanned").Length() > 0,
	}
}

// IsScanned reports whether doc is a legacy scanned document. Any single
// signal suffices.
func IsScanned(doc *goquery.Document) bool {
	return DetectScanSignals(doc).Any()
}
