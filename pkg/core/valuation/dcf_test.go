package valuation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscount(t *testing.T) {
	rows := []ForecastRow{{Year: 1, FCF: 100}, {Year: 2, FCF: 100}}

	out := Discount(rows, 0.10)

	require.Len(t, out, 2)
	assert.InDelta(t, 1/1.1, out[0].DiscountFactor, 1e-15)
	assert.InDelta(t, 100/1.1, out[0].PVFCF, 1e-12)
	assert.InDelta(t, 1/1.21, out[1].DiscountFactor, 1e-15)
	assert.InDelta(t, 100/1.21, out[1].PVFCF, 1e-12)

	// Source rows untouched.
	assert.Zero(t, rows[0].DiscountFactor)
}

func TestTerminalValue(t *testing.T) {
	tv, err := TerminalValue(100, 0.08, 0.025)
	require.NoError(t, err)
	assert.InDelta(t, 100*1.025/0.055, tv, 1e-9)
	assert.Greater(t, tv, 0.0)
	assert.False(t, math.IsInf(tv, 0))
}

func TestTerminalValue_Guards(t *testing.T) {
	cases := []struct {
		name         string
		fcf, r, g    float64
		wantContains string
	}{
		{"rate below growth", 100, 0.05, 0.06, "must strictly exceed"},
		{"rate equals growth", 100, 0.025, 0.025, "must strictly exceed"},
		{"negative fcf", -1, 0.08, 0.025, "non-negative"},
		{"NaN fcf", math.NaN(), 0.08, 0.025, "finite"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TerminalValue(tc.fcf, tc.r, tc.g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAssumption))
			assert.Contains(t, err.Error(), tc.wantContains)

			var aerr *AssumptionError
			require.True(t, errors.As(err, &aerr))
			assert.Equal(t, tc.r, aerr.DiscountRate)
		})
	}
}

func TestTerminalValue_ZeroFCF(t *testing.T) {
	tv, err := TerminalValue(0, 0.08, 0.02)
	require.NoError(t, err)
	assert.Zero(t, tv)
}

func TestValuate_ReferenceCase(t *testing.T) {
	in := mustInputs(t, techCorp())

	res, err := Valuate(in)
	require.NoError(t, err)

	// Pinned from a reference run of the same formulas.
	assert.InEpsilon(t, 901.5522325471484, res.EnterpriseValue, 1e-9)
	assert.InEpsilon(t, 801.5522325471484, res.EquityValue, 1e-9)
	assert.InEpsilon(t, 8.015522325471483, res.ValuePerShare, 1e-9)
	assert.InEpsilon(t, 300.2492633381488, res.PVFCF, 1e-9)
	assert.InEpsilon(t, 601.3029692089996, res.PVTerminal, 1e-9)
	assert.InEpsilon(t, 1298.1680111596588, res.TerminalValue, 1e-9)

	assert.InDelta(t, (res.EnterpriseValue-100)/100, res.ValuePerShare, 1e-12)
	assert.InDelta(t, res.PVFCF+res.PVTerminal, res.EnterpriseValue, 1e-9)

	require.Len(t, res.Forecast, 10)
	assert.InDelta(t, 0.4631934880846842, res.Forecast[9].DiscountFactor, 1e-12)
	assert.InDelta(t, 32.26503737219022, res.Forecast[9].PVFCF, 1e-9)

	var sum float64
	for _, row := range res.Forecast {
		sum += row.PVFCF
	}
	assert.InDelta(t, res.PVFCF, sum, 1e-12)
}

func TestValuate_FiveYearCase(t *testing.T) {
	in := mustInputs(t, Assumptions{
		BaseRevenue:       100,
		HorizonYears:      5,
		GrowthRates:       []float64{0.10, 0.09, 0.08, 0.07, 0.06},
		EBITMarginStart:   0.15,
		EBITMarginEnd:     0.20,
		TaxRate:           0.21,
		ReinvestmentRate:  0.40,
		DiscountRate:      0.08,
		TerminalGrowth:    0.025,
		NetDebt:           50,
		SharesOutstanding: 100,
	})

	res, err := Valuate(in)
	require.NoError(t, err)
	assert.InEpsilon(t, 218.81052675135265, res.EnterpriseValue, 1e-9)
	assert.InEpsilon(t, 1.6881052675135266, res.ValuePerShare, 1e-9)
}

func TestValuate_SingleYear(t *testing.T) {
	in := mustInputs(t, Assumptions{
		BaseRevenue:       1000,
		HorizonYears:      1,
		GrowthRates:       []float64{0.05},
		EBITMarginStart:   0.2,
		EBITMarginEnd:     0.3,
		TaxRate:           0.25,
		ReinvestmentRate:  0.5,
		DiscountRate:      0.1,
		TerminalGrowth:    0.02,
		SharesOutstanding: 10,
	})

	res, err := Valuate(in)
	require.NoError(t, err)
	assert.InEpsilon(t, 984.375, res.EnterpriseValue, 1e-9)
	assert.InEpsilon(t, 98.4375, res.ValuePerShare, 1e-9)
}

func TestValuate_NetCashRaisesEquity(t *testing.T) {
	a := techCorp()
	a.NetDebt = -100
	in := mustInputs(t, a)

	res, err := Valuate(in)
	require.NoError(t, err)
	assert.InDelta(t, res.EnterpriseValue+100, res.EquityValue, 1e-9)
}

func TestValuate_Idempotent(t *testing.T) {
	in := mustInputs(t, techCorp())

	first, err := Valuate(in)
	require.NoError(t, err)
	second, err := Valuate(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValuate_Nil(t *testing.T) {
	_, err := Valuate(nil)
	require.Error(t, err)
}

func TestValuate_Monotonicity(t *testing.T) {
	base := mustInputs(t, techCorp())

	prev := math.Inf(1)
	for _, r := range []float64{0.06, 0.07, 0.08, 0.09, 0.10, 0.12} {
		in, err := base.WithRates(r, 0.025)
		require.NoError(t, err)
		res, err := Valuate(in)
		require.NoError(t, err)
		assert.Less(t, res.ValuePerShare, prev, "value should fall as discount rate rises (r=%v)", r)
		prev = res.ValuePerShare
	}

	prev = math.Inf(-1)
	for _, g := range []float64{0, 0.01, 0.02, 0.03, 0.04} {
		in, err := base.WithRates(0.08, g)
		require.NoError(t, err)
		res, err := Valuate(in)
		require.NoError(t, err)
		assert.Greater(t, res.ValuePerShare, prev, "value should rise with terminal growth (g=%v)", g)
		prev = res.ValuePerShare
	}
}

func TestResult_Shares(t *testing.T) {
	in := mustInputs(t, techCorp())
	res, err := Valuate(in)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.TerminalShare()+res.ForecastShare(), 1e-12)
	assert.InDelta(t, 601.3029692089996/901.5522325471484, res.TerminalShare(), 1e-9)

	empty := &Result{}
	assert.Zero(t, empty.TerminalShare())
	assert.Zero(t, empty.ForecastShare())

	c := res.Composition()
	assert.Equal(t, res.PVFCF, c.PVFCF)
	assert.Equal(t, res.PVTerminal, c.PVTerminal)
	assert.InDelta(t, 0.33303590463068006, c.ForecastShare, 1e-9)
	assert.InDelta(t, 0.6669640953693199, c.TerminalShare, 1e-9)
}

func TestResult_Columns(t *testing.T) {
	in := mustInputs(t, techCorp())
	res, err := Valuate(in)
	require.NoError(t, err)

	cols := res.Columns()
	require.Len(t, cols.Year, 10)
	for i, row := range res.Forecast {
		assert.Equal(t, row.Year, cols.Year[i])
		assert.Equal(t, row.Revenue, cols.Revenue[i])
		assert.Equal(t, row.PVFCF, cols.PVFCF[i])
	}
}

func TestCostOfCapital(t *testing.T) {
	res, err := CostOfCapital(CapitalInput{
		UnleveredBeta:     1.0,
		RiskFreeRate:      0.04,
		MarketRiskPremium: 0.05,
		PreTaxCostOfDebt:  0.06,
		TaxRate:           0.25,
		DebtToEquity:      0.5,
	})
	require.NoError(t, err)

	// βL = 1 × (1 + 0.75 × 0.5) = 1.375; Ke = 0.04 + 1.375 × 0.05 = 0.10875
	assert.InDelta(t, 1.375, res.LeveredBeta, 1e-12)
	assert.InDelta(t, 0.10875, res.CostOfEquity, 1e-12)
	assert.InDelta(t, 0.045, res.CostOfDebt, 1e-12)
	assert.InDelta(t, 1.0/3, res.WeightDebt, 1e-12)
	assert.InDelta(t, 2.0/3, res.WeightEquity, 1e-12)
	assert.InDelta(t, 0.10875*2/3+0.045/3, res.WACC, 1e-12)

	_, err = CostOfCapital(CapitalInput{DebtToEquity: -1})
	require.Error(t, err)
	_, err = CostOfCapital(CapitalInput{TaxRate: 2})
	require.Error(t, err)
}
