package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMainContent(t *testing.T) {
	c := newConversion(t, `<html><body><section class="main-article-body">
<div class="wrapper">
<section id="s1">
<h2 class="pmc_sec_title">Introduction</h2>
<p>One.</p>
<div class="extra"><p>Nested in a wrapper.</p></div>
<section class="kwd-group"><p>keyword</p></section>
<section id="s1-1"><h3 class="pmc_sec_title">Background</h3><p>Deeper.</p></section>
<nav><p>navigation</p></nav>
</section>
</div>
<section class="abstract"><p>abstract copy</p></section>
<section class="ref-list"><ul><li>ref</li></ul></section>
</section></body></html>`)

	want := "## Introduction\n\n" +
		"One.\n\n" +
		"Nested in a wrapper.\n\n" +
		"### Background\n\n" +
		"Deeper."
	assert.Equal(t, want, c.renderMainContent())
}

func TestRenderSection_OwnedHeadingNotFromNestedSection(t *testing.T) {
	c := newConversion(t, `<html><body><section class="main-article-body"><section id="outer">
<p>Lead paragraph.</p>
<section id="inner"><h2 class="pmc_sec_title">Inner</h2><p>Inner text.</p></section>
</section></section></body></html>`)

	got := c.renderSection(c.doc.Find("#outer"))
	assert.Equal(t, "Lead paragraph.\n\n## Inner\n\nInner text.", got)
}

func TestRenderSection_Empty(t *testing.T) {
	c := newConversion(t, `<html><body><section id="s"><p> </p><div></div></section></body></html>`)
	assert.Equal(t, "", c.renderSection(c.doc.Find("#s")))

	c = newConversion(t, `<html><body><p>no body</p></body></html>`)
	assert.Equal(t, "", c.renderMainContent())
}

func TestRenderSection_KeepsNonParagraphText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "unordered list",
			html: `<h2 class="pmc_sec_title">Methods</h2><ul><li>Item one</li><li>Item <em>two</em></li></ul><p>After.</p>`,
			want: "## Methods\n\n- Item one\n- Item *two*\n\nAfter.",
		},
		{
			name: "ordered list skips empty items",
			html: `<ol><li>First</li><li> </li><li>Second</li></ol>`,
			want: "1. First\n2. Second",
		},
		{
			name: "loose text and formula wrapper",
			html: `<h2 class="pmc_sec_title">M</h2>Loose text here<div class="disp-formula">E = mc<sup>2</sup></div>`,
			want: "## M\n\nLoose text here\n\nE = mc^2^",
		},
		{
			name: "loose text joins inline siblings",
			html: `<p>Lead.</p>See <a href="https://example.org/t">table</a> below.<p>Tail.</p>`,
			want: "Lead.\n\nSee [table](https://example.org/t) below.\n\nTail.",
		},
		{
			name: "minor and unclassed headings",
			html: `<h5>Minor heading</h5><h2>Plain heading</h2><p>Text.</p>`,
			want: "Minor heading\n\nPlain heading\n\nText.",
		},
		{
			name: "list inside a wrapper",
			html: `<div class="list"><ul><li>Nested item</li></ul></div>`,
			want: "- Nested item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConversion(t, `<html><body><section id="s">`+tt.html+`</section></body></html>`)
			assert.Equal(t, tt.want, c.renderSection(c.doc.Find("#s")))
		})
	}
}

func TestRenderSection_BlocksInOrder(t *testing.T) {
	c := newConversion(t, `<html><body><section id="s">
<h2 class="pmc_sec_title">Methods</h2>
<p>Before.</p>
<section class="tw"><table><tr><td>k</td><td>v</td></tr></table></section>
<figure><img src="//cdn.example.org/f.png" alt="Plot"></figure>
<table><tr><td>x</td><td>y</td></tr></table>
<h3 class="pmc_sec_title">Extra heading</h3>
<p>After.</p>
</section></body></html>`)

	want := "## Methods\n\n" +
		"Before.\n\n" +
		"| k | v |\n| --- | --- |\n\n" +
		"![Plot](https://cdn.example.org/f.png)\n\n" +
		"| x | y |\n| --- | --- |\n\n" +
		"### Extra heading\n\n" +
		"After."
	assert.Equal(t, want, c.renderSection(c.doc.Find("#s")))
}

func TestRenderFigure(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "complete figure",
			html: `<section class="fig" id="f1"><h3 class="obj_head">Figure 1</h3>
<img src="/cms/f1.jpg" alt="Chart">
<a class="tileshop" href="https://example.org/zoom">Open</a>
<figcaption><p>Caption   text.</p></figcaption></section>`,
			want: "### Figure 1\n\n![Chart](https://pmc.ncbi.nlm.nih.gov/cms/f1.jpg)\n\n[View larger image](https://example.org/zoom)\n\nCaption text.",
		},
		{
			name: "missing alt defaults",
			html: `<section class="fig"><img src="https://x.org/a.png"></section>`,
			want: "![Figure](https://x.org/a.png)",
		},
		{
			name: "empty alt kept empty",
			html: `<section class="fig"><img src="a.png" alt=""></section>`,
			want: "![](a.png)",
		},
		{
			name: "no image",
			html: `<section class="fig"><figcaption>Only caption.</figcaption></section>`,
			want: "Only caption.",
		},
		{
			name: "nothing",
			html: `<section class="fig"></section>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConversion(t, "<html><body>"+tt.html+"</body></html>")
			assert.Equal(t, tt.want, c.renderFigure(c.doc.Find("section.fig")))
		})
	}
}

func TestNormalizeImageURL(t *testing.T) {
	assert.Equal(t, "https://cdn.org/a.png", normalizeImageURL("//cdn.org/a.png", DefaultBaseURL))
	assert.Equal(t, "https://pmc.ncbi.nlm.nih.gov/a.png", normalizeImageURL("/a.png", DefaultBaseURL))
	assert.Equal(t, "https://mirror.org/a.png", normalizeImageURL("/a.png", "https://mirror.org/"))
	assert.Equal(t, "https://pmc.ncbi.nlm.nih.gov/a.png", normalizeImageURL("/a.png", ""))
	assert.Equal(t, "rel/a.png", normalizeImageURL("rel/a.png", DefaultBaseURL))
}
