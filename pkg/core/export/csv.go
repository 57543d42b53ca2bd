package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// Kind names an export file.
type Kind string

const (
	KindForecast    Kind = "forecast"
	KindSummary     Kind = "summary"
	KindAssumptions Kind = "assumptions"
	KindSensitivity Kind = "sensitivity"
)

// Kinds lists every export in display order.
var Kinds = []Kind{KindForecast, KindSummary, KindAssumptions, KindSensitivity}

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown export kind %q (want forecast, summary, assumptions or sensitivity)", s)
}

// FileName is "<Company_Name>_DCF_<Kind>.csv".
func FileName(stem string, kind Kind) string {
	k := string(kind)
	if k != "" {
		k = strings.ToUpper(k[:1]) + k[1:]
	}
	return fmt.Sprintf("%s_DCF_%s.csv", stem, k)
}

// Write renders the requested kind of b to w.
func Write(w io.Writer, kind Kind, b Bundle) error {
	if b.Result == nil || b.Inputs == nil {
		return fmt.Errorf("export %s: valuation result missing", kind)
	}
	switch kind {
	case KindForecast:
		return Forecast(w, b)
	case KindSummary:
		return Summary(w, b)
	case KindAssumptions:
		return Assumptions(w, b)
	case KindSensitivity:
		return Sensitivity(w, b)
	default:
		return fmt.Errorf("unknown export kind %q", kind)
	}
}

// =============================================================================
// FORECAST
// =============================================================================

// ForecastRecord is one exported forecast year.
type ForecastRecord struct {
	Year           int    `csv:"Year"`
	Revenue        string `csv:"Revenue"`
	EBITMargin     string `csv:"EBITMargin"`
	EBIT           string `csv:"EBIT"`
	NOPAT          string `csv:"NOPAT"`
	Reinvestment   string `csv:"Reinvestment"`
	FCF            string `csv:"FCF"`
	DiscountFactor string `csv:"DiscountFactor"`
	PVFCF          string `csv:"PV_FCF"`
}

// ForecastRecords formats the discounted forecast of b.
func ForecastRecords(b Bundle) []*ForecastRecord {
	u := b.Units
	records := make([]*ForecastRecord, 0, len(b.Result.Forecast))
	for _, row := range b.Result.Forecast {
		records = append(records, &ForecastRecord{
			Year:           row.Year,
			Revenue:        u.Money(row.Revenue),
			EBITMargin:     Percent(row.EBITMargin, 2),
			EBIT:           u.Money(row.EBIT),
			NOPAT:          u.Money(row.NOPAT),
			Reinvestment:   u.Money(row.Reinvestment),
			FCF:            u.Money(row.FCF),
			DiscountFactor: Fixed(row.DiscountFactor, 4),
			PVFCF:          u.Money(row.PVFCF),
		})
	}
	return records
}

// Forecast writes the year-by-year forecast.
func Forecast(w io.Writer, b Bundle) error {
	if err := gocsv.Marshal(ForecastRecords(b), w); err != nil {
		return fmt.Errorf("failed to write forecast csv: %w", err)
	}
	return nil
}

// =============================================================================
// SUMMARY AND ASSUMPTIONS
// =============================================================================

// MetricRecord is a two-column label/value line.
type MetricRecord struct {
	Metric string `csv:"Metric"`
	Value  string `csv:"Value"`
}

// ParameterRecord is a two-column assumption line.
type ParameterRecord struct {
	Parameter string `csv:"Parameter"`
	Value     string `csv:"Value"`
}

// SummaryRecords lists the headline valuation figures.
func SummaryRecords(b Bundle) []*MetricRecord {
	u, r, in := b.Units, b.Result, b.Inputs
	return []*MetricRecord{
		{"Company Name", b.Company},
		{u.Caption("Enterprise Value"), u.Money(r.EnterpriseValue)},
		{u.Caption("Equity Value"), u.Money(r.EquityValue)},
		{"Value per Share ($)", Fixed(r.ValuePerShare, 2)},
		{u.Caption("PV of Projected FCFs"), u.Money(r.PVFCF)},
		{u.Caption("PV of Terminal Value"), u.Money(r.PVTerminal)},
		{"Terminal as % of EV", Percent(r.TerminalShare(), 1)},
		{u.Caption("Net Debt"), u.Money(in.NetDebt())},
		{"Shares Outstanding (" + shareLabel(u) + ")", u.Money(in.SharesOutstanding())},
	}
}

func shareLabel(u Units) string {
	if u.Label == "" {
		return "count"
	}
	return u.Label
}

// Summary writes the headline figures.
func Summary(w io.Writer, b Bundle) error {
	if err := gocsv.Marshal(SummaryRecords(b), w); err != nil {
		return fmt.Errorf("failed to write summary csv: %w", err)
	}
	return nil
}

// AssumptionRecords lists the model assumptions.
func AssumptionRecords(b Bundle) []*ParameterRecord {
	u, in := b.Units, b.Inputs
	growths := make([]string, 0, in.HorizonYears())
	for _, g := range in.GrowthRates() {
		growths = append(growths, Percent(g, 2))
	}
	return []*ParameterRecord{
		{"Projection Years", strconv.Itoa(in.HorizonYears())},
		{u.Caption("Revenue Year 0"), u.Money(in.BaseRevenue())},
		{"Growth Rates", strings.Join(growths, " ")},
		{"EBIT Margin Start", Percent(in.EBITMarginStart(), 2)},
		{"EBIT Margin End", Percent(in.EBITMarginEnd(), 2)},
		{"Tax Rate", Percent(in.TaxRate(), 2)},
		{"Reinvestment Rate", Percent(in.ReinvestmentRate(), 2)},
		{"WACC", Percent(in.DiscountRate(), 2)},
		{"Terminal Growth Rate", Percent(in.TerminalGrowth(), 2)},
	}
}

// Assumptions writes the model assumptions.
func Assumptions(w io.Writer, b Bundle) error {
	if err := gocsv.Marshal(AssumptionRecords(b), w); err != nil {
		return fmt.Errorf("failed to write assumptions csv: %w", err)
	}
	return nil
}

// =============================================================================
// SENSITIVITY
// =============================================================================

// SensitivityCorner is the header of the row-label column.
const SensitivityCorner = `Terminal Growth \ WACC`

// Sensitivity writes the grid: one row per terminal growth rate, one column
// per discount rate. Invalid cells are empty fields.
func Sensitivity(w io.Writer, b Bundle) error {
	g := b.Grid
	if g == nil {
		return fmt.Errorf("export sensitivity: grid missing")
	}

	cw := gocsv.DefaultCSVWriter(w)
	header := make([]string, 0, len(g.DiscountRates)+1)
	header = append(header, SensitivityCorner)
	for _, r := range g.DiscountRates {
		header = append(header, Percent(r, 2))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write sensitivity header: %w", err)
	}

	for i, growth := range g.TerminalGrowthRates {
		line := make([]string, 0, len(header))
		line = append(line, Percent(growth, 2))
		for _, c := range g.Cells[i] {
			if !c.Valid {
				line = append(line, "")
				continue
			}
			line = append(line, Fixed(c.Value, 2))
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("failed to write sensitivity row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush sensitivity csv: %w", err)
	}
	return nil
}
