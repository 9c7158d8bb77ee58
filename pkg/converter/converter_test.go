package converter

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArticle = `<html><head>
<meta name="citation_title" content="Sample Title">
<title>Sample Title - PMC</title>
</head><body>
<p class="ids">PMCID: PMC123</p>
<section class="abstract" id="abstract1"><h2>Abstract</h2><p>Background text.</p></section>
<section class="main-article-body">
<section id="sec1"><h2 class="pmc_sec_title">Results</h2><p>Result text.</p></section>
</section>
</body></html>`

func TestConvert_SampleArticle(t *testing.T) {
	md := mustConvert(t, sampleArticle)

	want := "# Sample Title\n\n" +
		"## Metadata\n" +
		"**PMCID:** PMC123\n" +
		"**URL:** https://www.ncbi.nlm.nih.gov/pmc/articles/PMC123/\n\n" +
		"## Abstract\n\n" +
		"Background text.\n\n" +
		"## Results\n\n" +
		"Result text.\n"
	assert.Equal(t, want, md)
	assert.NotContains(t, md, "## References")
	assert.True(t, strings.HasSuffix(md, "\n"))
	assert.False(t, strings.HasSuffix(md, "\n\n"))
}

func TestConvert_SpanningCellTable(t *testing.T) {
	src := `<html><body><section class="main-article-body"><section id="s1">
<h2 class="pmc_sec_title">Data</h2>
<table>
<thead><tr><th>A</th><th>B</th></tr></thead>
<tbody><tr><td colspan="2">Span</td></tr></tbody>
</table>
</section></section></body></html>`

	md := mustConvert(t, src)
	assert.Contains(t, md, "| A | B |\n| --- | --- |\n| Span |  |\n")
}

func TestConvert_Errors(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t\n"} {
		md, err := Convert(in)
		assert.True(t, errors.Is(err, ErrEmptyInput), "input %q", in)
		assert.Empty(t, md)
	}
}

func TestConvert_Idempotent(t *testing.T) {
	first := mustConvert(t, sampleArticle)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, mustConvert(t, sampleArticle))
	}
}

func TestConvert_ConcurrentCallsShareNothing(t *testing.T) {
	c := New()
	want, err := c.Convert(sampleArticle)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Convert(sampleArticle)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestConvert_HeadingLevels(t *testing.T) {
	for level := 1; level <= 4; level++ {
		tag := "h" + string(rune('0'+level))
		src := `<html><body><section class="main-article-body"><section id="s">` +
			`<` + tag + ` class="pmc_sec_title">Heading</` + tag + `><p>Text</p>` +
			`</section></section></body></html>`

		md := mustConvert(t, src)
		marker := strings.Repeat("#", level) + " Heading\n"
		assert.Contains(t, md, "\n"+marker, "level %d", level)
		assert.NotContains(t, md, "#"+marker, "level %d", level)
	}
}

func TestConvert_ListsAndLooseTextSurvive(t *testing.T) {
	md := mustConvert(t, `<html><body><section class="main-article-body">`+
		`<section id="s1"><h2 class="pmc_sec_title">Methods</h2><ul><li>Item one</li><li>Item two</li></ul><p>After.</p></section>`+
		`<section id="s2"><h2 class="pmc_sec_title">M</h2>Loose text here<div class="disp-formula">E = mc2</div></section>`+
		`</section></body></html>`)

	want := "## Metadata\n\n" +
		"## Methods\n\n- Item one\n- Item two\n\nAfter.\n\n" +
		"## M\n\nLoose text here\n\nE = mc2\n"
	assert.Equal(t, want, md)
}

func TestConvert_ScannedRouting(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		scanned  bool
		fullText bool
	}{
		{
			name:     "scanned pages container",
			src:      `<html><body><section class="scanned-pages"></section></body></html>`,
			scanned:  true,
			fullText: true,
		},
		{
			name:    "scanpage meta tag",
			src:     `<html><head><meta name="ncbi_type" content="scanpage"></head><body></body></html>`,
			scanned: true,
		},
		{
			name:    "scanned figure",
			src:     `<html><body><figure class="fig-scanned"><img src="/p1.jpg"></figure></body></html>`,
			scanned: true,
		},
		{
			name: "structured article",
			src:  sampleArticle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := mustConvert(t, tt.src)
			assert.Equal(t, tt.scanned, strings.Contains(md, scannedNote))
			assert.Equal(t, tt.fullText, strings.Contains(md, "## Full Text (Scanned Pages)"))
		})
	}
}

func TestConvert_ScannedSkipsBody(t *testing.T) {
	src := `<html><head><meta name="ncbi_type" content="scanpage"></head><body>
<section class="abstract"><p>Scanned abstract.</p></section>
<section class="main-article-body"><section id="s"><h2 class="pmc_sec_title">Body</h2><p>Text</p></section></section>
</body></html>`

	md := mustConvert(t, src)
	assert.Contains(t, md, scannedNote+"\n\n## Abstract\n\nScanned abstract.")
	assert.NotContains(t, md, "## Body")
}

func TestConvert_BodyFallsBackToArticle(t *testing.T) {
	src := `<html><body><article>
<section class="abstract"><p>Abstract once.</p></section>
<section id="s"><h2 class="pmc_sec_title">Discussion</h2><p>Talk.</p></section>
<section class="ref-list"><ol><li>Ref one.</li></ol></section>
</article></body></html>`

	md := mustConvert(t, src)
	assert.Equal(t, 1, strings.Count(md, "Abstract once."))
	assert.Equal(t, 1, strings.Count(md, "Ref one."))
	assert.Contains(t, md, "## Discussion\n\nTalk.")
	assert.Contains(t, md, "## References\n\n1. Ref one.\n")
}
