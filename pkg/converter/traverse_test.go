package converter

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
)

const traversalHTML = `<html><body><div id="root"><p>a</p><section><p>b</p></section>tail</div></body></html>`

func TestEachChild_DirectChildrenOnly(t *testing.T) {
	doc := newDoc(t, traversalHTML)

	var names []string
	eachChild(doc.Find("#root"), func(s *goquery.Selection) {
		names = append(names, goquery.NodeName(s))
	})
	assert.Equal(t, []string{"p", "section", "#text"}, names)
}

func TestEachDescendant_DocumentOrder(t *testing.T) {
	doc := newDoc(t, traversalHTML)

	var names []string
	eachDescendant(doc.Find("#root"), func(s *goquery.Selection) {
		names = append(names, goquery.NodeName(s))
	})
	assert.Equal(t, []string{"p", "#text", "section", "p", "#text", "#text"}, names)
}

func TestClassifyNode(t *testing.T) {
	doc := newDoc(t, `<html><body><div id="root"><p>p</p><section class="tw"></section><div class="tw"></div><section class="fig"></section><section class="figure"></section><section id="s"></section><table></table><figure></figure><h2 class="pmc_sec_title">H</h2><h2>plain</h2><div class="wrap"></div><ul></ul><ol></ol><em>e</em><a href="x">a</a><nav></nav><script></script> <h5>h</h5>text</div></body></html>`)

	var kinds []nodeKind
	eachChild(doc.Find("#root"), func(s *goquery.Selection) {
		kinds = append(kinds, classifyNode(s))
	})
	assert.Equal(t, []nodeKind{
		kindParagraph, kindTableWrapper, kindTableWrapper, kindFigure, kindFigure,
		kindSection, kindTable, kindRawFigure, kindHeading, kindUnknown, kindUnknown,
		kindList, kindList, kindInline, kindInline,
		kindIgnored, kindIgnored, kindIgnored, kindUnknown, kindText,
	}, kinds)
}

func TestHasBlockContent(t *testing.T) {
	doc := newDoc(t, `<html><body><div id="leaf">E = <em>mc</em><sup>2</sup></div><div id="deep"><span><div><p>x</p></div></span></div><div id="list"><ul><li>i</li></ul></div></body></html>`)

	assert.False(t, hasBlockContent(doc.Find("#leaf").Get(0)))
	assert.True(t, hasBlockContent(doc.Find("#deep").Get(0)))
	assert.True(t, hasBlockContent(doc.Find("#list").Get(0)))
}
