package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/pmc2md/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxColspan bounds placeholder expansion for malformed colspan values.
const maxColspan = 1000

var tableNumberPattern = regexp.MustCompile(`(?i)Table\s+(\d+)`)

// BuildTable converts an HTML <table> into a rectangular grid.
// It returns false when the table has no rows or no columns.
func BuildTable(table *goquery.Selection) (models.Table, bool) {
	if table.Length() == 0 {
		return models.Table{}, false
	}
	tbl := table.First()

	headerRows := rowsOf(tbl.ChildrenFiltered("thead"))

	var bodyRows []*goquery.Selection
	if tbodies := tbl.ChildrenFiltered("tbody"); tbodies.Length() > 0 {
		bodyRows = append(rowsOf(tbodies), rowsOf(tbl.ChildrenFiltered("tfoot"))...)
	} else {
		all := ownRows(tbl)
		if len(headerRows) <= len(all) {
			bodyRows = all[len(headerRows):]
		}
	}

	var rows [][]string
	columns := 0
	for _, tr := range append(append([]*goquery.Selection{}, headerRows...), bodyRows...) {
		row := gridRow(tr)
		rows = append(rows, row)
		if len(row) > columns {
			columns = len(row)
		}
	}
	if len(rows) == 0 || columns == 0 {
		return models.Table{}, false
	}
	for i := range rows {
		rows[i] = fitRow(rows[i], columns)
	}

	t := models.Table{Columns: columns}
	switch {
	case len(headerRows) > 0:
		t.HeaderSource = models.HeaderExplicit
		t.Header = rows[0]
		t.Rows = rows[1:]
	case looksLikeHeader(rows[0]):
		t.HeaderSource = models.HeaderPromoted
		t.Header = rows[0]
		t.Rows = rows[1:]
	default:
		t.HeaderSource = models.HeaderSynthesized
		t.Header = synthesizeHeader(columns)
		t.Rows = rows
	}
	return t, true
}

// RenderTable emits the markdown grid: header, separator, data rows.
func RenderTable(t models.Table) string {
	if t.Columns == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, gridLine(fitRow(t.Header, t.Columns)))

	sep := make([]string, t.Columns)
	for i := range sep {
		sep[i] = "---"
	}
	lines = append(lines, gridLine(sep))

	for _, row := range t.Rows {
		lines = append(lines, gridLine(fitRow(row, t.Columns)))
	}
	return strings.Join(lines, "\n")
}

// renderTableBlock renders a table wrapper: title, grid, then the caption
// below the grid, separated by a blank line.
func (c *conversion) renderTableBlock(s *goquery.Selection) string {
	var f Fragment

	title := ""
	if h := s.Find("h3.obj_head, h4.obj_head").First(); h.Length() > 0 {
		title = CleanText(h.Text())
		if title != "" {
			f.Line("### " + title)
			f.Blank()
		}
	}

	if t, ok := BuildTable(s.Find("table").First()); ok {
		f.Block(RenderTable(t))
	}

	caption := s.Find("div.caption").First()
	if caption.Length() == 0 {
		caption = s.Find("div.tw-foot").First()
	}
	if text := CleanText(caption.Text()); text != "" {
		f.Line(captionLabel(title) + " " + text)
	}

	if f.Empty() {
		return ""
	}
	return f.String()
}

func captionLabel(title string) string {
	if m := tableNumberPattern.FindStringSubmatch(title); m != nil {
		return fmt.Sprintf("Table %s Caption:", m[1])
	}
	return "Table Caption:"
}

// rowsOf returns the <tr> children of every group in groups, in order.
func rowsOf(groups *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	groups.Each(func(_ int, g *goquery.Selection) {
		g.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
			rows = append(rows, tr)
		})
	})
	return rows
}

// ownRows returns every row of the table itself in document order, looking
// through row groups but never into nested tables.
func ownRows(tbl *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	eachChild(tbl, func(child *goquery.Selection) {
		if !isElement(child, "") {
			return
		}
		switch child.Get(0).DataAtom {
		case atom.Tr:
			rows = append(rows, child)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			rows = append(rows, rowsOf(child)...)
		}
	})
	return rows
}

// gridRow expands one <tr> into grid cells.
func gridRow(tr *goquery.Selection) []string {
	var row []string
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		row = append(row, cellText(cell))
		for i := 1; i < colspan(cell.Get(0)); i++ {
			row = append(row, "")
		}
	})
	return row
}

func cellText(cell *goquery.Selection) string {
	text := CleanText(cell.Text())
	text = strings.ReplaceAll(text, "|", `\|`)
	text = strings.ReplaceAll(text, "\n", " ")
	if text == "" {
		text = " "
	}
	return text
}

func colspan(n *html.Node) int {
	v, ok := attr(n, "colspan")
	if !ok {
		return 1
	}
	span, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || span < 1 {
		return 1
	}
	if span > maxColspan {
		return maxColspan
	}
	return span
}

// looksLikeHeader reports whether a row has at least one non-empty cell that
// is not numeric-looking. All-numeric header rows (e.g. years) are therefore
// treated as data.
func looksLikeHeader(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" && !isNumeric(cell) {
			return true
		}
	}
	return false
}

// isNumeric reports whether cell is digits once '.' and '-' are removed.
func isNumeric(cell string) bool {
	s := strings.NewReplacer(".", "", "-", "").Replace(cell)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func synthesizeHeader(columns int) []string {
	header := make([]string, columns)
	for i := range header {
		if i == 0 {
			header[i] = "Category"
			continue
		}
		header[i] = fmt.Sprintf("Value %d", i)
	}
	return header
}

// fitRow pads with empty cells or truncates row to exactly n cells.
func fitRow(row []string, n int) []string {
	out := make([]string, n)
	copy(out, row)
	return out
}

func gridLine(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}
