// Package valuation implements the discounted cash flow engine: validated
// inputs, the revenue-to-FCF projection, discounting, the Gordon growth
// terminal value, aggregation to per-share value and the sensitivity grid.
//
// Every function in this package is a pure computation over float64 values.
// Monetary amounts are absolute currency units and rates are decimal
// fractions (0.08, not 8).
package valuation

import (
	"fmt"
	"math"
)

// MinGrowthRate is the lowest annual growth rate accepted (-50%).
const MinGrowthRate = -0.5

// =============================================================================
// ASSUMPTIONS (raw request form)
// =============================================================================

// Assumptions is the unvalidated form of a valuation request. It is what
// callers decode from JSON/YAML; NewInputs turns it into Inputs.
type Assumptions struct {
	BaseRevenue       float64   `json:"base_revenue" yaml:"base_revenue"`
	HorizonYears      int       `json:"horizon_years" yaml:"horizon_years"`
	GrowthRates       []float64 `json:"growth_rates" yaml:"growth_rates"`
	EBITMarginStart   float64   `json:"ebit_margin_start" yaml:"ebit_margin_start"`
	EBITMarginEnd     float64   `json:"ebit_margin_end" yaml:"ebit_margin_end"`
	TaxRate           float64   `json:"tax_rate" yaml:"tax_rate"`
	ReinvestmentRate  float64   `json:"reinvestment_rate" yaml:"reinvestment_rate"`
	DiscountRate      float64   `json:"discount_rate" yaml:"discount_rate"` // WACC
	TerminalGrowth    float64   `json:"terminal_growth" yaml:"terminal_growth"`
	NetDebt           float64   `json:"net_debt" yaml:"net_debt"` // Negative = net cash
	SharesOutstanding float64   `json:"shares_outstanding" yaml:"shares_outstanding"`
}

// Validate checks every field bound and the discount/terminal growth
// invariant. It returns the first failure as a *ValidationError.
func (a Assumptions) Validate() error {
	if !(a.BaseRevenue > 0) || math.IsInf(a.BaseRevenue, 1) {
		return invalid("base_revenue", a.BaseRevenue, "must be a positive finite number")
	}
	if a.HorizonYears <= 0 {
		return invalid("horizon_years", a.HorizonYears, "must be positive")
	}
	if len(a.GrowthRates) != a.HorizonYears {
		return invalid("growth_rates", len(a.GrowthRates),
			fmt.Sprintf("length must equal horizon_years (%d)", a.HorizonYears))
	}
	for i, g := range a.GrowthRates {
		if !(g >= MinGrowthRate) || math.IsInf(g, 1) {
			return invalid(fmt.Sprintf("growth_rates[%d]", i), g, "must be a finite rate >= -0.5 (-50%)")
		}
	}
	if !inUnit(a.EBITMarginStart) {
		return invalid("ebit_margin_start", a.EBITMarginStart, "must be between 0 and 1")
	}
	if !inUnit(a.EBITMarginEnd) {
		return invalid("ebit_margin_end", a.EBITMarginEnd, "must be between 0 and 1")
	}
	if !inUnit(a.TaxRate) {
		return invalid("tax_rate", a.TaxRate, "must be between 0 and 1")
	}
	if !inUnit(a.ReinvestmentRate) {
		return invalid("reinvestment_rate", a.ReinvestmentRate, "must be between 0 and 1")
	}
	if !(a.DiscountRate > 0 && a.DiscountRate < 1) {
		return invalid("discount_rate", a.DiscountRate, "must be between 0 and 1 (exclusive)")
	}
	if !(a.TerminalGrowth >= 0 && a.TerminalGrowth < 1) {
		return invalid("terminal_growth", a.TerminalGrowth, "must be in [0, 1)")
	}
	if !(a.DiscountRate > a.TerminalGrowth) {
		return invalid("discount_rate", a.DiscountRate,
			fmt.Sprintf("must exceed terminal_growth (%v)", a.TerminalGrowth))
	}
	if math.IsNaN(a.NetDebt) || math.IsInf(a.NetDebt, 0) {
		return invalid("net_debt", a.NetDebt, "must be a finite number")
	}
	if !(a.SharesOutstanding > 0) || math.IsInf(a.SharesOutstanding, 1) {
		return invalid("shares_outstanding", a.SharesOutstanding, "must be a positive finite number")
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// =============================================================================
// INPUTS (validated, immutable)
// =============================================================================

// Inputs is a validated, read-only set of valuation assumptions. The zero
// value is not usable; build one with NewInputs.
type Inputs struct {
	a Assumptions
}

// NewInputs validates a and returns an immutable copy of it.
func NewInputs(a Assumptions) (*Inputs, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.GrowthRates = append([]float64(nil), a.GrowthRates...)
	return &Inputs{a: a}, nil
}

// WithRates derives a new Inputs identical to in except for the discount
// rate and terminal growth. The result is validated like any other.
func (in *Inputs) WithRates(discountRate, terminalGrowth float64) (*Inputs, error) {
	a := in.Assumptions()
	a.DiscountRate = discountRate
	a.TerminalGrowth = terminalGrowth
	return NewInputs(a)
}

// Assumptions returns a copy of the underlying assumptions.
func (in *Inputs) Assumptions() Assumptions {
	a := in.a
	a.GrowthRates = append([]float64(nil), in.a.GrowthRates...)
	return a
}

func (in *Inputs) BaseRevenue() float64       { return in.a.BaseRevenue }
func (in *Inputs) HorizonYears() int          { return in.a.HorizonYears }
func (in *Inputs) EBITMarginStart() float64   { return in.a.EBITMarginStart }
func (in *Inputs) EBITMarginEnd() float64     { return in.a.EBITMarginEnd }
func (in *Inputs) TaxRate() float64           { return in.a.TaxRate }
func (in *Inputs) ReinvestmentRate() float64  { return in.a.ReinvestmentRate }
func (in *Inputs) DiscountRate() float64      { return in.a.DiscountRate }
func (in *Inputs) TerminalGrowth() float64    { return in.a.TerminalGrowth }
func (in *Inputs) NetDebt() float64           { return in.a.NetDebt }
func (in *Inputs) SharesOutstanding() float64 { return in.a.SharesOutstanding }

// GrowthRate returns the growth applied in projection year y (1-based).
func (in *Inputs) GrowthRate(y int) float64 { return in.a.GrowthRates[y-1] }

// GrowthRates returns a copy of the annual growth schedule.
func (in *Inputs) GrowthRates() []float64 {
	return append([]float64(nil), in.a.GrowthRates...)
}
