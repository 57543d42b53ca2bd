// Package export renders valuation results into downloadable tabular files.
// It only reads the engine's output; formatting (unit scaling, rounding,
// percent strings) happens here and nowhere in the engine.
package export

import (
	"dcf_valuation/pkg/core/valuation"

	"github.com/shopspring/decimal"
)

// Units sets how monetary amounts are scaled for display.
type Units struct {
	Divisor int64
	Label   string // Suffix for column labels, e.g. "M"
}

var (
	Millions = Units{Divisor: 1_000_000, Label: "M"}
	Absolute = Units{Divisor: 1, Label: ""}
)

// Money scales v by the unit divisor and rounds to two decimals.
func (u Units) Money(v float64) string {
	d := u.Divisor
	if d <= 0 {
		d = 1
	}
	return decimal.NewFromFloat(v).Div(decimal.NewFromInt(d)).StringFixed(2)
}

// Caption appends the unit label to a money caption: "Enterprise Value ($M)".
func (u Units) Caption(name string) string {
	if u.Label == "" {
		return name + " ($)"
	}
	return name + " ($" + u.Label + ")"
}

// Percent renders a decimal fraction as a percentage with places decimals.
func Percent(v float64, places int32) string {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).StringFixed(places) + "%"
}

// Fixed rounds v to places decimals.
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Bundle is everything one valuation produced. Grid may be nil.
type Bundle struct {
	Company string
	Inputs  *valuation.Inputs
	Result  *valuation.Result
	Grid    *valuation.Grid
	Units   Units
}
