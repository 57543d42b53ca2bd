package valuation

import (
	"fmt"
	"math"
)

// CapitalInput holds the market parameters used to derive a discount rate.
type CapitalInput struct {
	UnleveredBeta     float64 `json:"unlevered_beta" yaml:"unlevered_beta"`
	RiskFreeRate      float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	MarketRiskPremium float64 `json:"market_risk_premium" yaml:"market_risk_premium"`
	PreTaxCostOfDebt  float64 `json:"pre_tax_cost_of_debt" yaml:"pre_tax_cost_of_debt"`
	TaxRate           float64 `json:"tax_rate" yaml:"tax_rate"`
	DebtToEquity      float64 `json:"debt_to_equity" yaml:"debt_to_equity"` // Target leverage (D/E)
}

// CapitalResult holds the derived rates.
type CapitalResult struct {
	LeveredBeta  float64 `json:"levered_beta"`
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // After tax
	WeightDebt   float64 `json:"weight_debt"`
	WeightEquity float64 `json:"weight_equity"`
	WACC         float64 `json:"wacc"`
}

// CostOfCapital derives WACC using CAPM and the Hamada equation.
//
//	βL   = βU × (1 + (1 - t) × D/E)
//	Ke   = Rf + βL × MRP
//	Kd   = pre-tax Kd × (1 - t)
//	Wd   = (D/E) / (1 + D/E),  We = 1 / (1 + D/E)
//	WACC = Ke × We + Kd × Wd
//
// The resulting WACC still has to pass NewInputs like any other discount rate.
func CostOfCapital(in CapitalInput) (CapitalResult, error) {
	if in.DebtToEquity < 0 || math.IsNaN(in.DebtToEquity) {
		return CapitalResult{}, fmt.Errorf("debt_to_equity must be non-negative, got %v", in.DebtToEquity)
	}
	if !inUnit(in.TaxRate) {
		return CapitalResult{}, fmt.Errorf("tax_rate must be between 0 and 1, got %v", in.TaxRate)
	}

	leveredBeta := in.UnleveredBeta * (1 + (1-in.TaxRate)*in.DebtToEquity)
	ke := in.RiskFreeRate + leveredBeta*in.MarketRiskPremium
	kd := in.PreTaxCostOfDebt * (1 - in.TaxRate)

	wd := in.DebtToEquity / (1 + in.DebtToEquity)
	we := 1.0 / (1 + in.DebtToEquity)

	return CapitalResult{
		LeveredBeta:  leveredBeta,
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WeightDebt:   wd,
		WeightEquity: we,
		WACC:         ke*we + kd*wd,
	}, nil
}
