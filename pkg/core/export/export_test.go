package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"dcf_valuation/pkg/core/valuation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func techCorpBundle(t *testing.T) Bundle {
	t.Helper()
	growths := []float64{0.10, 0.10, 0.10, 0.10, 0.10, 0.04, 0.04, 0.04, 0.04, 0.04}
	in, err := valuation.NewInputs(valuation.Assumptions{
		BaseRevenue:       500,
		HorizonYears:      10,
		GrowthRates:       growths,
		EBITMarginStart:   0.10,
		EBITMarginEnd:     0.15,
		TaxRate:           0.21,
		ReinvestmentRate:  0.40,
		DiscountRate:      0.08,
		TerminalGrowth:    0.025,
		NetDebt:           100,
		SharesOutstanding: 100,
	})
	require.NoError(t, err)
	res, err := valuation.Valuate(in)
	require.NoError(t, err)
	grid := valuation.Sensitivity(in, []float64{0.02, 0.08}, []float64{0.025, 0.03})
	return Bundle{Company: "TechCorp Inc", Inputs: in, Result: res, Grid: grid, Units: Absolute}
}

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestForecast(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Forecast(&buf, techCorpBundle(t)))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 11)
	assert.Equal(t, []string{"Year", "Revenue", "EBITMargin", "EBIT", "NOPAT", "Reinvestment", "FCF", "DiscountFactor", "PV_FCF"}, rows[0])
	assert.Equal(t, []string{"1", "550.00", "10.00%", "55.00", "43.45", "17.38", "26.07", "0.9259", "24.14"}, rows[1])
	assert.Equal(t, "10", rows[10][0])
	assert.Equal(t, "979.72", rows[10][1])
	assert.Equal(t, "15.00%", rows[10][2])
	assert.Equal(t, "0.4632", rows[10][7])
	assert.Equal(t, "32.27", rows[10][8])
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, techCorpBundle(t)))

	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])
	assert.Equal(t, []string{"Company Name", "TechCorp Inc"}, rows[1])
	assert.Equal(t, []string{"Enterprise Value ($)", "901.55"}, rows[2])
	assert.Equal(t, []string{"Equity Value ($)", "801.55"}, rows[3])
	assert.Equal(t, []string{"Value per Share ($)", "8.02"}, rows[4])
}

func TestAssumptions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Assumptions(&buf, techCorpBundle(t)))

	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, []string{"Parameter", "Value"}, rows[0])
	assert.Equal(t, []string{"Projection Years", "10"}, rows[1])
	assert.Contains(t, rows[3][1], "10.00% 10.00%")
	assert.Equal(t, []string{"WACC", "8.00%"}, rows[8])
	assert.Equal(t, []string{"Terminal Growth Rate", "2.50%"}, rows[9])
}

func TestSensitivity_InvalidCellsAreEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Sensitivity(&buf, techCorpBundle(t)))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{SensitivityCorner, "2.00%", "8.00%"}, rows[0])
	assert.Equal(t, "2.50%", rows[1][0])
	assert.Equal(t, "", rows[1][1])
	assert.Equal(t, "8.02", rows[1][2])
	assert.Equal(t, "", rows[2][1])
}

func TestSensitivity_MissingGrid(t *testing.T) {
	b := techCorpBundle(t)
	b.Grid = nil
	assert.Error(t, Sensitivity(&bytes.Buffer{}, b))
}

func TestWrite_Dispatch(t *testing.T) {
	b := techCorpBundle(t)
	for _, k := range Kinds {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, k, b), k)
		assert.NotEmpty(t, buf.String(), k)
	}
	assert.Error(t, Write(&bytes.Buffer{}, Kind("pdf"), b))
	assert.Error(t, Write(&bytes.Buffer{}, KindForecast, Bundle{}))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Sensitivity ")
	require.NoError(t, err)
	assert.Equal(t, KindSensitivity, k)

	_, err = ParseKind("xlsx")
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "TechCorp_Inc_DCF_Forecast.csv", FileName("TechCorp_Inc", KindForecast))
	assert.Equal(t, "X_DCF_Sensitivity.csv", FileName("X", KindSensitivity))
}

func TestUnits(t *testing.T) {
	assert.Equal(t, "901.55", Millions.Money(901_552_232.5))
	assert.Equal(t, "-100.00", Millions.Money(-100_000_000))
	assert.Equal(t, "Net Debt ($M)", Millions.Caption("Net Debt"))
	assert.Equal(t, "12.35%", Percent(0.12345, 2))
	assert.Equal(t, "0.4632", Fixed(0.4631934880846842, 4))
}
