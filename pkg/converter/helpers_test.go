package converter

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// newDoc parses an HTML snippet for testing.
func newDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func newConversion(t *testing.T, src string) *conversion {
	t.Helper()
	return &conversion{doc: newDoc(t, src), baseURL: DefaultBaseURL}
}

func mustConvert(t *testing.T, src string) string {
	t.Helper()
	md, err := Convert(src)
	require.NoError(t, err)
	return md
}
