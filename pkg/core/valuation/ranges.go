package valuation

import "math"

// RangeConfig sets the sensitivity axes around a base case, in percentage
// points.
type RangeConfig struct {
	WACCSpan   float64 `yaml:"wacc_span" json:"wacc_span"`
	WACCStep   float64 `yaml:"wacc_step" json:"wacc_step"`
	GrowthSpan float64 `yaml:"growth_span" json:"growth_span"`
	GrowthStep float64 `yaml:"growth_step" json:"growth_step"`
}

// Axis bounds in percentage points.
const (
	WACCFloor     = 2.0
	WACCCeiling   = 25.0
	GrowthFloor   = 0.0
	GrowthCeiling = 10.0
)

// DefaultRangeConfig is ±2% WACC in 0.5% steps and ±1% terminal growth in
// 0.25% steps.
func DefaultRangeConfig() RangeConfig {
	return RangeConfig{WACCSpan: 2.0, WACCStep: 0.5, GrowthSpan: 1.0, GrowthStep: 0.25}
}

// DefaultRanges builds both sensitivity axes centred on the base case of in.
func DefaultRanges(in *Inputs, cfg RangeConfig) (discountRates, terminalGrowthRates []float64) {
	discountRates = RateRange(in.DiscountRate()*100, cfg.WACCSpan, cfg.WACCStep, WACCFloor, WACCCeiling)
	terminalGrowthRates = RateRange(in.TerminalGrowth()*100, cfg.GrowthSpan, cfg.GrowthStep, GrowthFloor, GrowthCeiling)
	return discountRates, terminalGrowthRates
}

// RateRange steps from max(floor, center-span) up to min(ceiling, center+span)
// inclusive (with a 0.01pp tolerance) and returns decimal fractions rounded
// to 1e-9. All arguments are percentage points. A non-positive step yields
// just the clamped centre.
func RateRange(center, span, step, floor, ceiling float64) []float64 {
	low := math.Max(floor, center-span)
	high := math.Min(ceiling, center+span)
	if step <= 0 {
		return []float64{roundRate(math.Min(math.Max(center, floor), ceiling) / 100)}
	}

	var out []float64
	for i := 0; ; i++ {
		v := low + float64(i)*step
		if v >= high+0.01 {
			break
		}
		out = append(out, roundRate(v/100))
	}
	return out
}

func roundRate(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
