package converter

import (
	"testing"

	"github.com/dtnitsch/pmc2md/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLink(t *testing.T) {
	tests := []struct {
		name string
		href string
		text string
		want models.LinkKind
	}{
		{"doi host", "https://doi.org/10.1000/x", "Link", models.LinkDOI},
		{"pmc host", "https://pmc.ncbi.nlm.nih.gov/articles/PMC1/", "Link", models.LinkPMC},
		{"legacy pmc path", "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1/", "Link", models.LinkPMC},
		{"pubmed host", "https://pubmed.ncbi.nlm.nih.gov/123/", "Link", models.LinkPubMed},
		{"legacy pubmed path", "https://www.ncbi.nlm.nih.gov/pubmed/123", "Link", models.LinkPubMed},
		{"other", "https://publisher.example.com/a", "Publisher", models.LinkOther},
		{"doi text", "https://publisher.example.com/a", "doi", models.LinkDOI},
		{"pmc text", "https://publisher.example.com/a", "PMC", models.LinkPMC},
		{"pubmed text", "https://publisher.example.com/a", "PubMed", models.LinkPubMed},
		{"doi beats pubmed text", "https://doi.org/10.1/x", "PubMed", models.LinkDOI},
		{"pmc text beats pubmed host", "https://pubmed.ncbi.nlm.nih.gov/1/", "PMC", models.LinkPMC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLink(tt.href, tt.text))
		})
	}
}

const refListHTML = `<html><body><section class="ref-list"><h2>References</h2>
<ul class="ref-list">
<li><cite>Smith J. A study. 2020.</cite> <a href="https://doi.org/10.1/a">DOI</a> <a href="https://pubmed.ncbi.nlm.nih.gov/1/">PubMed</a></li>
<li>Doe A. <span>Other work.</span> <a href="https://example.com/x">Publisher</a> <a href="">empty</a></li>
<li><a href="https://pmc.ncbi.nlm.nih.gov/articles/PMC5/">PMC free article</a></li>
</ul></section></body></html>`

func TestExtractReferences(t *testing.T) {
	doc := newDoc(t, refListHTML)
	refs := ExtractReferences(doc.Find("section.ref-list"))
	require.Len(t, refs, 3)

	assert.Equal(t, 1, refs[0].Ordinal)
	assert.Equal(t, "Smith J. A study. 2020.", refs[0].Citation)
	require.Len(t, refs[0].Links, 2)
	assert.Equal(t, models.LinkDOI, refs[0].Links[0].Kind)
	assert.Equal(t, models.LinkPubMed, refs[0].Links[1].Kind)

	assert.Equal(t, 2, refs[1].Ordinal)
	assert.Equal(t, "Doe A. Other work.", refs[1].Citation)
	require.Len(t, refs[1].Links, 1)
	assert.Equal(t, "Publisher", refs[1].Links[0].Label())

	assert.Equal(t, "", refs[2].Citation)
	assert.Equal(t, models.LinkPMC, refs[2].Links[0].Kind)
}

func TestFormatReferences(t *testing.T) {
	doc := newDoc(t, refListHTML)
	got := FormatReferences(ExtractReferences(doc.Find("section.ref-list")))

	want := "## References\n\n" +
		"1. Smith J. A study. 2020. [DOI](https://doi.org/10.1/a) | [PubMed](https://pubmed.ncbi.nlm.nih.gov/1/)\n\n" +
		"2. Doe A. Other work. [Publisher](https://example.com/x)\n\n" +
		"3. [PMC](https://pmc.ncbi.nlm.nih.gov/articles/PMC5/)"
	assert.Equal(t, want, got)
}

func TestReferences_Missing(t *testing.T) {
	assert.Equal(t, "", FormatReferences(nil))

	c := newConversion(t, `<html><body><section class="ref-list"><p>No list here.</p></section></body></html>`)
	assert.Equal(t, "## References", c.renderReferences())

	c = newConversion(t, `<html><body><p>nothing</p></body></html>`)
	assert.Equal(t, "", c.renderReferences())
}

func TestConvert_EmptyReferenceListKeepsHeading(t *testing.T) {
	md := mustConvert(t, `<html><body><section class="ref-list"><h2>References</h2></section></body></html>`)
	assert.Equal(t, "## Metadata\n\n## References\n", md)
}

func TestExtractReferences_OrderedListFallback(t *testing.T) {
	doc := newDoc(t, `<html><body><section class="ref-list"><ol><li>First.</li><li>Second.</li></ol></section></body></html>`)
	refs := ExtractReferences(doc.Find("section.ref-list"))
	require.Len(t, refs, 2)
	assert.Equal(t, "Second.", refs[1].Citation)
	assert.Equal(t, 2, refs[1].Ordinal)
}
