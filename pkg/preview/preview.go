// Package preview renders converted markdown to HTML for inspection.
package preview

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int
	Title string
}

// Summary describes the structure of a markdown document.
type Summary struct {
	Outline []Heading
	Tables  int
	Images  int
	Links   int
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}

// Render converts markdown to an HTML fragment using GitHub-flavoured tables.
func Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := newMarkdown().Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Page wraps the rendered fragment in a standalone HTML document.
func Page(title string, src []byte) ([]byte, error) {
	body, err := Render(src)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("<style>body{max-width:50em;margin:auto;font-family:sans-serif}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px}</style>\n")
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// Summarize walks the parsed document and reports headings, tables, images and links.
func Summarize(src []byte) Summary {
	doc := newMarkdown().Parser().Parse(text.NewReader(src))

	var s Summary
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			s.Outline = append(s.Outline, Heading{Level: node.Level, Title: string(node.Text(src))})
		case *east.Table:
			s.Tables++
		case *ast.Image:
			s.Images++
		case *ast.Link:
			s.Links++
		}
		return ast.WalkContinue, nil
	})
	return s
}
