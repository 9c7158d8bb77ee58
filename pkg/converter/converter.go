// Package converter turns PubMed Central article HTML into Markdown.
//
// Conversion is a pure function of its input: no I/O, no shared state.
// Every call parses its own document tree, so a Converter may be used
// from any number of goroutines.
package converter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrEmptyInput is returned for empty or whitespace-only input.
	ErrEmptyInput = errors.New("empty html input")
	// ErrUnparseable wraps any failure to build or walk the document tree.
	ErrUnparseable = errors.New("unparseable html")
)

// Converter renders article HTML. The zero value is ready to use.
type Converter struct {
	// BaseURL is prefixed to root-relative image sources.
	// Empty means DefaultBaseURL.
	BaseURL string
}

// New returns a Converter using DefaultBaseURL.
func New() *Converter {
	return &Converter{BaseURL: DefaultBaseURL}
}

// Convert renders html with a default Converter.
func Convert(html string) (string, error) {
	return New().Convert(html)
}

// Convert renders html to Markdown. On error no partial output is
// returned.
func (c *Converter) Convert(html string) (md string, err error) {
	if strings.TrimSpace(html) == "" {
		return "", ErrEmptyInput
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	defer func() {
		if r := recover(); r != nil {
			md = ""
			err = fmt.Errorf("%w: %v", ErrUnparseable, r)
		}
	}()

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	conv := &conversion{doc: doc, baseURL: base}
	return conv.render(), nil
}

// conversion is the per-call state. It owns the parsed tree and is
// discarded when the call returns.
type conversion struct {
	doc     *goquery.Document
	baseURL string
}

func (c *conversion) render() string {
	metadata := FormatMetadata(ExtractMetadata(c.doc))
	if IsScanned(c.doc) {
		return Assemble(metadata, c.renderScanned())
	}
	return Assemble(
		metadata,
		c.renderAbstract(),
		c.renderMainContent(),
		c.renderReferences(),
	)
}
