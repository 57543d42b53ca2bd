package valuation

// ForecastRow is one projected year. DiscountFactor and PVFCF are zero
// until the row has passed through Discount.
type ForecastRow struct {
	Year           int     `json:"year"`
	Revenue        float64 `json:"revenue"`
	EBITMargin     float64 `json:"ebit_margin"`
	EBIT           float64 `json:"ebit"`
	NOPAT          float64 `json:"nopat"`
	Reinvestment   float64 `json:"reinvestment"`
	FCF            float64 `json:"fcf"`
	DiscountFactor float64 `json:"discount_factor"`
	PVFCF          float64 `json:"pv_fcf"`
}

// Project runs the revenue-to-FCF waterfall for every horizon year.
//
// FORMULA (year y of N):
//
//	Revenue(y)      = Revenue(y-1) × (1 + g[y-1]),  Revenue(0) = base
//	Margin(y)       = start + (end - start) × (y-1)/(N-1)   (start when N = 1)
//	EBIT            = Revenue × Margin
//	NOPAT           = EBIT × (1 - tax)
//	Reinvestment    = NOPAT × reinvestment rate
//	FCF             = NOPAT - Reinvestment
func Project(in *Inputs) []ForecastRow {
	n := in.HorizonYears()
	rows := make([]ForecastRow, 0, n)
	revenue := in.BaseRevenue()

	for y := 1; y <= n; y++ {
		revenue *= 1 + in.GrowthRate(y)

		margin := MarginAt(in.EBITMarginStart(), in.EBITMarginEnd(), y, n)
		ebit := revenue * margin
		nopat := ebit * (1 - in.TaxRate())
		reinvestment := nopat * in.ReinvestmentRate()

		rows = append(rows, ForecastRow{
			Year:         y,
			Revenue:      revenue,
			EBITMargin:   margin,
			EBIT:         ebit,
			NOPAT:        nopat,
			Reinvestment: reinvestment,
			FCF:          nopat - reinvestment,
		})
	}
	return rows
}

// MarginAt linearly interpolates the EBIT margin for year y of n.
func MarginAt(start, end float64, y, n int) float64 {
	t := 0.0
	if n > 1 {
		t = float64(y-1) / float64(n-1)
	}
	return start + (end-start)*t
}
