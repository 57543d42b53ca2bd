// Package report renders a finished valuation for people: a markdown
// document, an HTML page built from it, and a styled terminal view.
package report

import (
	"fmt"
	"strings"

	"dcf_valuation/pkg/core/export"
	"dcf_valuation/pkg/core/valuation"
)

// InvalidMarker stands in for grid cells with no valuation.
const InvalidMarker = "—"

// Disclaimer closes every report.
const Disclaimer = "This valuation is a model output based on the stated assumptions. It is not investment advice."

// Document is everything a report shows. Grid and Commentary are optional.
type Document struct {
	Company    string
	Inputs     *valuation.Inputs
	Result     *valuation.Result
	Grid       *valuation.Grid
	Units      export.Units
	Commentary string
}

func (d Document) bundle() export.Bundle {
	return export.Bundle{Company: d.Company, Inputs: d.Inputs, Result: d.Result, Grid: d.Grid, Units: d.Units}
}

func (d Document) title() string {
	name := strings.TrimSpace(d.Company)
	if name == "" {
		name = "Company"
	}
	return name + " DCF Valuation"
}

// Markdown renders the report as GitHub-flavoured markdown.
func Markdown(d Document) (string, error) {
	if d.Result == nil || d.Inputs == nil {
		return "", fmt.Errorf("report: valuation result missing")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.title())

	b.WriteString("## Key Metrics\n\n| Metric | Value |\n|---|---|\n")
	for _, m := range export.SummaryRecords(d.bundle())[1:] {
		fmt.Fprintf(&b, "| %s | %s |\n", m.Metric, m.Value)
	}

	c := d.Result.Composition()
	fmt.Fprintf(&b, "\n## Enterprise Value Composition\n\n| Source | %s | Share of EV |\n|---|---|---|\n", d.Units.Caption("Value"))
	fmt.Fprintf(&b, "| PV of Projected FCFs | %s | %s |\n", d.Units.Money(c.PVFCF), export.Percent(c.ForecastShare, 1))
	fmt.Fprintf(&b, "| PV of Terminal Value | %s | %s |\n", d.Units.Money(c.PVTerminal), export.Percent(c.TerminalShare, 1))

	b.WriteString("\n## Assumptions\n\n| Parameter | Value |\n|---|---|\n")
	for _, p := range export.AssumptionRecords(d.bundle()) {
		fmt.Fprintf(&b, "| %s | %s |\n", p.Parameter, p.Value)
	}

	u := d.Units
	fmt.Fprintf(&b, "\n## Forecast\n\n| Year | %s | EBIT Margin | %s | %s | %s | %s | Discount Factor | %s |\n",
		u.Caption("Revenue"), u.Caption("EBIT"), u.Caption("NOPAT"), u.Caption("Reinvestment"), u.Caption("FCF"), u.Caption("PV of FCF"))
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, r := range export.ForecastRecords(d.bundle()) {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.Year, r.Revenue, r.EBITMargin, r.EBIT, r.NOPAT, r.Reinvestment, r.FCF, r.DiscountFactor, r.PVFCF)
	}

	if d.Grid != nil && d.Grid.Size() > 0 {
		writeSensitivity(&b, d)
	}

	if c := strings.TrimSpace(d.Commentary); c != "" {
		fmt.Fprintf(&b, "\n## Commentary\n\n%s\n", c)
	}

	fmt.Fprintf(&b, "\n---\n\n*%s*\n", Disclaimer)
	return b.String(), nil
}

func writeSensitivity(b *strings.Builder, d Document) {
	g := d.Grid
	baseRow, baseCol := g.BaseCell(d.Inputs.DiscountRate(), d.Inputs.TerminalGrowth())

	fmt.Fprintf(b, "\n## Sensitivity\n\nValue per share by terminal growth (rows) and WACC (columns). Base case: WACC %s, terminal growth %s. %s marks combinations where WACC does not exceed terminal growth.\n\n",
		export.Percent(d.Inputs.DiscountRate(), 2), export.Percent(d.Inputs.TerminalGrowth(), 2), InvalidMarker)

	b.WriteString("| Growth / WACC |")
	for _, r := range g.DiscountRates {
		fmt.Fprintf(b, " %s |", export.Percent(r, 2))
	}
	b.WriteString("\n|---|" + strings.Repeat("---|", len(g.DiscountRates)) + "\n")

	for i, growth := range g.TerminalGrowthRates {
		fmt.Fprintf(b, "| %s |", export.Percent(growth, 2))
		for j, c := range g.Cells[i] {
			switch {
			case !c.Valid:
				fmt.Fprintf(b, " %s |", InvalidMarker)
			case i == baseRow && j == baseCol:
				fmt.Fprintf(b, " **%s** |", export.Fixed(c.Value, 2))
			default:
				fmt.Fprintf(b, " %s |", export.Fixed(c.Value, 2))
			}
		}
		b.WriteString("\n")
	}
}
