package valuation

import (
	"fmt"
	"math"
)

// DiscountFactor returns (1 + rate)^(-year).
func DiscountFactor(rate float64, year int) float64 {
	return math.Pow(1+rate, -float64(year))
}

// Discount returns a copy of rows with DiscountFactor and PVFCF populated
// at the given discount rate. The input slice is not modified.
func Discount(rows []ForecastRow, rate float64) []ForecastRow {
	out := make([]ForecastRow, len(rows))
	for i, row := range rows {
		row.DiscountFactor = DiscountFactor(rate, row.Year)
		row.PVFCF = row.FCF * row.DiscountFactor
		out[i] = row
	}
	return out
}

// TerminalValue capitalizes the final-year cash flow as a growing perpetuity
// (Gordon growth).
//
// FORMULA: TV = FCF_N × (1 + g) / (r - g)
//
// It fails with an *AssumptionError (ErrInvalidAssumption) when r <= g or
// when the final-year FCF is negative.
func TerminalValue(lastFCF, discountRate, terminalGrowth float64) (float64, error) {
	if math.IsNaN(lastFCF) || math.IsInf(lastFCF, 0) {
		return 0, &AssumptionError{
			LastFCF: lastFCF, DiscountRate: discountRate, TerminalGrowth: terminalGrowth,
			Reason: fmt.Sprintf("final-year FCF must be finite, got %v", lastFCF),
		}
	}
	if lastFCF < 0 {
		return 0, &AssumptionError{
			LastFCF: lastFCF, DiscountRate: discountRate, TerminalGrowth: terminalGrowth,
			Reason: fmt.Sprintf("final-year FCF must be non-negative, got %v", lastFCF),
		}
	}
	if !(discountRate > terminalGrowth) {
		return 0, &AssumptionError{
			LastFCF: lastFCF, DiscountRate: discountRate, TerminalGrowth: terminalGrowth,
			Reason: fmt.Sprintf("discount rate (%.2f%%) must strictly exceed terminal growth (%.2f%%), difference %.2f%%",
				discountRate*100, terminalGrowth*100, (discountRate-terminalGrowth)*100),
		}
	}
	return lastFCF * (1 + terminalGrowth) / (discountRate - terminalGrowth), nil
}
