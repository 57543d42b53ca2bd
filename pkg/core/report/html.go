package report

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const pageStyle = `body{font-family:-apple-system,Segoe UI,Helvetica,Arial,sans-serif;max-width:960px;margin:2rem auto;color:#1f2937}
table{border-collapse:collapse;margin:1rem 0}th,td{border:1px solid #d1d5db;padding:4px 10px;text-align:right}
th:first-child,td:first-child{text-align:left}
td.invalid{color:#9ca3af;background:#f3f4f6;text-align:center}
td.base-case{outline:2px solid #111827;font-weight:bold}`

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// HTML renders the markdown report into a standalone page and colours the
// sensitivity table: valid cells on a red-yellow-green scale, the base case
// outlined, invalid cells greyed.
func HTML(d Document) (string, error) {
	source, err := Markdown(d)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	if err := md.Convert([]byte(source), &body); err != nil {
		return "", fmt.Errorf("failed to render report markdown: %w", err)
	}

	page := fmt.Sprintf("<html><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body>%s</body></html>",
		html.EscapeString(d.title()), pageStyle, body.String())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse report html: %w", err)
	}
	if d.Grid != nil && d.Grid.Size() > 0 {
		decorateSensitivity(doc, d)
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialise report html: %w", err)
	}
	return "<!DOCTYPE html>\n" + out, nil
}

func decorateSensitivity(doc *goquery.Document, d Document) {
	g := d.Grid
	summary := g.Summary()
	baseRow, baseCol := g.BaseCell(d.Inputs.DiscountRate(), d.Inputs.TerminalGrowth())

	table := doc.Find("h2#sensitivity").NextAllFiltered("table").First()
	table.AddClass("sensitivity")
	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		if i >= len(g.Cells) {
			return
		}
		row.Find("td").Each(func(j int, td *goquery.Selection) {
			if j == 0 || j-1 >= len(g.Cells[i]) {
				return
			}
			c := g.Cells[i][j-1]
			if !c.Valid {
				td.AddClass("invalid")
				td.SetAttr("title", c.Reason)
				return
			}
			td.SetAttr("style", "background-color:"+Gradient(summary.Position(c.Value)))
			if i == baseRow && j-1 == baseCol {
				td.AddClass("base-case")
			}
		})
	})
}

type rgb struct{ r, g, b float64 }

var (
	gradientLow  = rgb{0xF8, 0x69, 0x6B}
	gradientMid  = rgb{0xFF, 0xEB, 0x84}
	gradientHigh = rgb{0x63, 0xBE, 0x7B}
)

// Gradient maps p in [0,1] to a red-yellow-green hex colour.
func Gradient(p float64) string {
	switch {
	case p < 0 || math.IsNaN(p):
		p = 0
	case p > 1:
		p = 1
	}
	from, to, t := gradientLow, gradientMid, p*2
	if p >= 0.5 {
		from, to, t = gradientMid, gradientHigh, (p-0.5)*2
	}
	mix := func(a, b float64) int { return int(a + (b-a)*t + 0.5) }
	return fmt.Sprintf("#%02X%02X%02X", mix(from.r, to.r), mix(from.g, to.g), mix(from.b, to.b))
}
