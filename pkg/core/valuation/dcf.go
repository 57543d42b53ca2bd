package valuation

import "fmt"

// Result holds the valuation outputs together with the discounted forecast.
type Result struct {
	EnterpriseValue float64       `json:"enterprise_value"`
	EquityValue     float64       `json:"equity_value"`
	ValuePerShare   float64       `json:"value_per_share"`
	PVFCF           float64       `json:"pv_fcf"`      // Sum of discounted projected FCF
	PVTerminal      float64       `json:"pv_terminal"` // Discounted terminal value
	TerminalValue   float64       `json:"terminal_value"`
	Forecast        []ForecastRow `json:"forecast"`
}

// Valuate performs the full two-stage DCF for in.
//
//	EV        = Σ PV(FCF_y) + TV × (1 + r)^(-N)
//	Equity    = EV - net debt
//	Per share = Equity / shares outstanding
//
// Terminal value failures are returned unchanged (errors.Is ErrInvalidAssumption).
func Valuate(in *Inputs) (*Result, error) {
	if in == nil {
		return nil, fmt.Errorf("valuation inputs are nil")
	}
	rate := in.DiscountRate()

	forecast := Discount(Project(in), rate)

	last := forecast[len(forecast)-1]
	tv, err := TerminalValue(last.FCF, rate, in.TerminalGrowth())
	if err != nil {
		return nil, err
	}
	pvTerminal := tv * DiscountFactor(rate, in.HorizonYears())

	var pvFCF float64
	for _, row := range forecast {
		pvFCF += row.PVFCF
	}

	ev := pvFCF + pvTerminal
	equity := ev - in.NetDebt()

	return &Result{
		EnterpriseValue: ev,
		EquityValue:     equity,
		ValuePerShare:   equity / in.SharesOutstanding(),
		PVFCF:           pvFCF,
		PVTerminal:      pvTerminal,
		TerminalValue:   tv,
		Forecast:        forecast,
	}, nil
}

// TerminalShare is the fraction of enterprise value contributed by the
// discounted terminal value. Zero when EV is zero.
func (r *Result) TerminalShare() float64 {
	if r.EnterpriseValue == 0 {
		return 0
	}
	return r.PVTerminal / r.EnterpriseValue
}

// ForecastShare is the fraction of enterprise value from the explicit forecast.
func (r *Result) ForecastShare() float64 {
	if r.EnterpriseValue == 0 {
		return 0
	}
	return r.PVFCF / r.EnterpriseValue
}

// Composition splits enterprise value into its two discounted sources.
type Composition struct {
	PVFCF         float64 `json:"pv_fcf"`
	PVTerminal    float64 `json:"pv_terminal"`
	ForecastShare float64 `json:"forecast_share"`
	TerminalShare float64 `json:"terminal_share"`
}

// Composition returns the EV split behind the composition chart.
func (r *Result) Composition() Composition {
	return Composition{
		PVFCF:         r.PVFCF,
		PVTerminal:    r.PVTerminal,
		ForecastShare: r.ForecastShare(),
		TerminalShare: r.TerminalShare(),
	}
}

// ForecastColumns is a column-oriented view of a forecast for charting.
type ForecastColumns struct {
	Year           []int     `json:"year"`
	Revenue        []float64 `json:"revenue"`
	EBITMargin     []float64 `json:"ebit_margin"`
	EBIT           []float64 `json:"ebit"`
	NOPAT          []float64 `json:"nopat"`
	Reinvestment   []float64 `json:"reinvestment"`
	FCF            []float64 `json:"fcf"`
	DiscountFactor []float64 `json:"discount_factor"`
	PVFCF          []float64 `json:"pv_fcf"`
}

// Columns derives the column view from the forecast rows.
func (r *Result) Columns() ForecastColumns {
	n := len(r.Forecast)
	c := ForecastColumns{
		Year:           make([]int, n),
		Revenue:        make([]float64, n),
		EBITMargin:     make([]float64, n),
		EBIT:           make([]float64, n),
		NOPAT:          make([]float64, n),
		Reinvestment:   make([]float64, n),
		FCF:            make([]float64, n),
		DiscountFactor: make([]float64, n),
		PVFCF:          make([]float64, n),
	}
	for i, row := range r.Forecast {
		c.Year[i] = row.Year
		c.Revenue[i] = row.Revenue
		c.EBITMargin[i] = row.EBITMargin
		c.EBIT[i] = row.EBIT
		c.NOPAT[i] = row.NOPAT
		c.Reinvestment[i] = row.Reinvestment
		c.FCF[i] = row.FCF
		c.DiscountFactor[i] = row.DiscountFactor
		c.PVFCF[i] = row.PVFCF
	}
	return c
}
