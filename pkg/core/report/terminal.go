package report

import (
	"fmt"
	"strings"

	"dcf_valuation/pkg/core/export"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorGood    = lipgloss.Color("#10B981")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	cellStyle    = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	labelStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorPrimary)
	invalidStyle = cellStyle.Foreground(colorMuted)
	baseStyle    = cellStyle.Bold(true).Foreground(colorGood)
	noteStyle    = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
)

// Terminal renders the report for a terminal: key metrics, the forecast
// and, when present, the sensitivity grid.
func Terminal(d Document) (string, error) {
	if d.Result == nil || d.Inputs == nil {
		return "", fmt.Errorf("report: valuation result missing")
	}
	b := d.bundle()

	metrics := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return labelStyle
			}
			return cellStyle
		})
	for _, m := range export.SummaryRecords(b)[1:] {
		metrics.Row(m.Metric, m.Value)
	}

	u := d.Units
	forecast := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("Year", u.Caption("Revenue"), "Margin", u.Caption("NOPAT"), u.Caption("FCF"), "DF", u.Caption("PV")).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range export.ForecastRecords(b) {
		forecast.Row(fmt.Sprint(r.Year), r.Revenue, r.EBITMargin, r.NOPAT, r.FCF, r.DiscountFactor, r.PVFCF)
	}

	parts := []string{
		titleStyle.Render(d.title()),
		metrics.String(),
		sectionStyle.Render("Forecast"),
		forecast.String(),
	}
	if d.Grid != nil && d.Grid.Size() > 0 {
		parts = append(parts, sectionStyle.Render("Sensitivity (value per share)"), sensitivityTable(d).String())
	}
	if c := strings.TrimSpace(d.Commentary); c != "" {
		parts = append(parts, sectionStyle.Render("Commentary"), c)
	}
	parts = append(parts, noteStyle.Render(Disclaimer))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n", nil
}

func sensitivityTable(d Document) *table.Table {
	g := d.Grid
	baseRow, baseCol := g.BaseCell(d.Inputs.DiscountRate(), d.Inputs.TerminalGrowth())
	summary := g.Summary()

	headers := []string{"g \\ WACC"}
	for _, r := range g.DiscountRates {
		headers = append(headers, export.Percent(r, 2))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return headerStyle
			case row < len(g.Cells) && col-1 < len(g.Cells[row]) && !g.Cells[row][col-1].Valid:
				return invalidStyle
			case row == baseRow && col-1 == baseCol:
				return baseStyle
			case row < len(g.Cells) && col-1 < len(g.Cells[row]):
				return cellStyle.Foreground(lipgloss.Color(Gradient(summary.Position(g.Cells[row][col-1].Value))))
			default:
				return cellStyle
			}
		})

	for i, growth := range g.TerminalGrowthRates {
		line := []string{export.Percent(growth, 2)}
		for _, c := range g.Cells[i] {
			if !c.Valid {
				line = append(line, InvalidMarker)
				continue
			}
			line = append(line, export.Fixed(c.Value, 2))
		}
		t.Row(line...)
	}
	return t
}
