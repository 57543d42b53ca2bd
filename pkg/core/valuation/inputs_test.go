package valuation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// techCorp is the ten-year reference case used across the package tests.
func techCorp() Assumptions {
	return Assumptions{
		BaseRevenue:       500,
		HorizonYears:      10,
		GrowthRates:       append(repeat(0.10, 5), repeat(0.04, 5)...),
		EBITMarginStart:   0.10,
		EBITMarginEnd:     0.15,
		TaxRate:           0.21,
		ReinvestmentRate:  0.40,
		DiscountRate:      0.08,
		TerminalGrowth:    0.025,
		NetDebt:           100,
		SharesOutstanding: 100,
	}
}

func mustInputs(t *testing.T, a Assumptions) *Inputs {
	t.Helper()
	in, err := NewInputs(a)
	require.NoError(t, err)
	return in
}

func TestNewInputs_Valid(t *testing.T) {
	in := mustInputs(t, techCorp())

	assert.Equal(t, 500.0, in.BaseRevenue())
	assert.Equal(t, 10, in.HorizonYears())
	assert.Equal(t, 0.10, in.GrowthRate(1))
	assert.Equal(t, 0.04, in.GrowthRate(10))
	assert.Equal(t, 0.08, in.DiscountRate())
	assert.Equal(t, 0.025, in.TerminalGrowth())
}

func TestNewInputs_NegativeNetDebtAllowed(t *testing.T) {
	a := techCorp()
	a.NetDebt = -250

	in := mustInputs(t, a)
	assert.Equal(t, -250.0, in.NetDebt())
}

func TestNewInputs_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Assumptions)
		field  string
	}{
		{"negative revenue", func(a *Assumptions) { a.BaseRevenue = -100 }, "base_revenue"},
		{"zero revenue", func(a *Assumptions) { a.BaseRevenue = 0 }, "base_revenue"},
		{"NaN revenue", func(a *Assumptions) { a.BaseRevenue = math.NaN() }, "base_revenue"},
		{"zero years", func(a *Assumptions) { a.HorizonYears = 0; a.GrowthRates = nil }, "horizon_years"},
		{"growth length mismatch", func(a *Assumptions) { a.GrowthRates = repeat(0.05, 5) }, "growth_rates"},
		{"growth below -50%", func(a *Assumptions) { a.GrowthRates[3] = -0.6 }, "growth_rates[3]"},
		{"margin start above 1", func(a *Assumptions) { a.EBITMarginStart = 1.5 }, "ebit_margin_start"},
		{"margin end negative", func(a *Assumptions) { a.EBITMarginEnd = -0.01 }, "ebit_margin_end"},
		{"tax above 1", func(a *Assumptions) { a.TaxRate = 1.5 }, "tax_rate"},
		{"reinvestment above 1", func(a *Assumptions) { a.ReinvestmentRate = 1.5 }, "reinvestment_rate"},
		{"discount rate zero", func(a *Assumptions) { a.DiscountRate = 0 }, "discount_rate"},
		{"discount rate one", func(a *Assumptions) { a.DiscountRate = 1 }, "discount_rate"},
		{"terminal growth negative", func(a *Assumptions) { a.TerminalGrowth = -0.01 }, "terminal_growth"},
		{"discount equals growth", func(a *Assumptions) { a.DiscountRate = 0.025; a.TerminalGrowth = 0.025 }, "discount_rate"},
		{"discount below growth", func(a *Assumptions) { a.DiscountRate = 0.05; a.TerminalGrowth = 0.06 }, "discount_rate"},
		{"infinite net debt", func(a *Assumptions) { a.NetDebt = math.Inf(1) }, "net_debt"},
		{"zero shares", func(a *Assumptions) { a.SharesOutstanding = 0 }, "shares_outstanding"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := techCorp()
			tc.mutate(&a)

			in, err := NewInputs(a)
			require.Error(t, err)
			assert.Nil(t, in)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
			assert.Equal(t, tc.field, verr.Field)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestNewInputs_MessageNamesValue(t *testing.T) {
	a := techCorp()
	a.TaxRate = 1.5

	_, err := NewInputs(a)
	require.Error(t, err)
	assert.Equal(t, "tax_rate must be between 0 and 1, got 1.5", err.Error())
}

func TestInputs_Immutable(t *testing.T) {
	a := techCorp()
	in := mustInputs(t, a)

	// Mutating the source slice or an exported copy must not leak back.
	a.GrowthRates[0] = 0.99
	rates := in.GrowthRates()
	rates[1] = 0.99
	copyA := in.Assumptions()
	copyA.GrowthRates[2] = 0.99

	assert.Equal(t, 0.10, in.GrowthRate(1))
	assert.Equal(t, 0.10, in.GrowthRate(2))
	assert.Equal(t, 0.10, in.GrowthRate(3))
}

func TestInputs_WithRates(t *testing.T) {
	base := mustInputs(t, techCorp())

	derived, err := base.WithRates(0.09, 0.03)
	require.NoError(t, err)
	assert.Equal(t, 0.09, derived.DiscountRate())
	assert.Equal(t, 0.03, derived.TerminalGrowth())
	assert.Equal(t, base.BaseRevenue(), derived.BaseRevenue())
	assert.Equal(t, base.GrowthRates(), derived.GrowthRates())

	// Base is untouched.
	assert.Equal(t, 0.08, base.DiscountRate())

	_, err = base.WithRates(0.03, 0.03)
	require.Error(t, err)
}
