// Package scenario describes a company valuation case as a document: the
// company name, the assumptions (with a growth schedule rather than a raw
// list) and optional sensitivity axes. Scenarios are what the CLI reads
// from disk and what the HTTP API accepts.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"dcf_valuation/pkg/core/growth"
	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/core/valuation"

	"gopkg.in/yaml.v2"
)

// Scenario is a single valuation case. Monetary fields are absolute
// currency units.
type Scenario struct {
	Company           string                  `json:"company" yaml:"company"`
	BaseRevenue       float64                 `json:"base_revenue" yaml:"base_revenue"`
	Years             int                     `json:"years" yaml:"years"`
	Growth            growth.Schedule         `json:"growth" yaml:"growth"`
	EBITMarginStart   float64                 `json:"ebit_margin_start" yaml:"ebit_margin_start"`
	EBITMarginEnd     float64                 `json:"ebit_margin_end" yaml:"ebit_margin_end"`
	TaxRate           float64                 `json:"tax_rate" yaml:"tax_rate"`
	ReinvestmentRate  float64                 `json:"reinvestment_rate" yaml:"reinvestment_rate"`
	DiscountRate      *float64                `json:"discount_rate,omitempty" yaml:"discount_rate,omitempty"` // nil when absent
	Capital           *valuation.CapitalInput `json:"capital,omitempty" yaml:"capital,omitempty"` // Used when discount_rate is absent
	TerminalGrowth    float64                 `json:"terminal_growth" yaml:"terminal_growth"`
	NetDebt           float64                 `json:"net_debt" yaml:"net_debt"`
	SharesOutstanding float64                 `json:"shares_outstanding" yaml:"shares_outstanding"`
	Sensitivity       *Axes                   `json:"sensitivity,omitempty" yaml:"sensitivity,omitempty"`
}

// Axes are explicit sensitivity axes. Empty axes fall back to the ranges
// centred on the base case.
type Axes struct {
	DiscountRates       []float64 `json:"discount_rates,omitempty" yaml:"discount_rates,omitempty"`
	TerminalGrowthRates []float64 `json:"terminal_growth_rates,omitempty" yaml:"terminal_growth_rates,omitempty"`
}

// Default is the TechCorp Inc case: 500M revenue, ten years at 8% growth,
// margin 10% -> 15%, 21% tax, 40% reinvestment, 8% WACC, 2.5% terminal
// growth, 100M net debt and 100M shares.
func Default() Scenario {
	return Scenario{
		Company:           "TechCorp Inc",
		BaseRevenue:       500_000_000,
		Years:             10,
		Growth:            growth.Schedule{Method: growth.MethodCAGR, CAGR: growth.Rate(0.08)},
		EBITMarginStart:   0.10,
		EBITMarginEnd:     0.15,
		TaxRate:           0.21,
		ReinvestmentRate:  0.40,
		DiscountRate:      growth.Rate(0.08),
		TerminalGrowth:    0.025,
		NetDebt:           100_000_000,
		SharesOutstanding: 100_000_000,
	}
}

// DiscountRateOrDerived returns the explicit discount rate, or the WACC
// derived from the capital block when no rate was given. An explicit rate
// is returned as is, zero included, for the engine to validate.
func (s Scenario) DiscountRateOrDerived() (float64, error) {
	if s.DiscountRate != nil {
		return *s.DiscountRate, nil
	}
	if s.Capital == nil {
		return 0, fmt.Errorf("discount_rate or capital is required")
	}
	res, err := valuation.CostOfCapital(*s.Capital)
	if err != nil {
		return 0, fmt.Errorf("capital: %w", err)
	}
	return res.WACC, nil
}

// Assumptions resolves the growth schedule and discount rate.
func (s Scenario) Assumptions() (valuation.Assumptions, error) {
	rates, err := s.Growth.Build(s.Years)
	if err != nil {
		return valuation.Assumptions{}, fmt.Errorf("growth: %w", err)
	}
	rate, err := s.DiscountRateOrDerived()
	if err != nil {
		return valuation.Assumptions{}, err
	}
	return valuation.Assumptions{
		BaseRevenue:       s.BaseRevenue,
		HorizonYears:      s.Years,
		GrowthRates:       rates,
		EBITMarginStart:   s.EBITMarginStart,
		EBITMarginEnd:     s.EBITMarginEnd,
		TaxRate:           s.TaxRate,
		ReinvestmentRate:  s.ReinvestmentRate,
		DiscountRate:      rate,
		TerminalGrowth:    s.TerminalGrowth,
		NetDebt:           s.NetDebt,
		SharesOutstanding: s.SharesOutstanding,
	}, nil
}

// Inputs builds validated engine inputs. Validation errors from the engine
// are returned unwrapped so callers can inspect *valuation.ValidationError.
func (s Scenario) Inputs() (*valuation.Inputs, error) {
	a, err := s.Assumptions()
	if err != nil {
		return nil, err
	}
	return valuation.NewInputs(a)
}

// Ranges returns the sensitivity axes: explicit ones where given, the
// defaults around the base case otherwise.
func (s Scenario) Ranges(in *valuation.Inputs, cfg valuation.RangeConfig) (discountRates, terminalGrowthRates []float64) {
	discountRates, terminalGrowthRates = valuation.DefaultRanges(in, cfg)
	if s.Sensitivity == nil {
		return discountRates, terminalGrowthRates
	}
	if len(s.Sensitivity.DiscountRates) > 0 {
		discountRates = s.Sensitivity.DiscountRates
	}
	if len(s.Sensitivity.TerminalGrowthRates) > 0 {
		terminalGrowthRates = s.Sensitivity.TerminalGrowthRates
	}
	return discountRates, terminalGrowthRates
}

// FileStem is the company name reduced to letters, digits, '-' and '_',
// used in export file names. Anything else, path separators and dots
// included, becomes '_'.
func (s Scenario) FileStem() string {
	stem := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(s.Company))
	if strings.Trim(stem, "_") == "" {
		return "Company"
	}
	return stem
}

// =============================================================================
// LOADING
// =============================================================================

// Format is a scenario document encoding.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatHJSON Format = "hjson"
)

// FormatFromPath picks the format from a file extension (YAML by default).
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".hjson":
		return FormatHJSON
	default:
		return FormatYAML
	}
}

// Load reads a scenario file. Fields absent from the file keep their
// Default values.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	s, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario document over the Default scenario. Defaults
// only fill keys the document leaves out: an explicit zero is kept and
// reaches validation.
func Parse(data []byte, format Format) (*Scenario, error) {
	s := Default()
	// Growth is replaced wholesale when present.
	s.Growth = growth.Schedule{}
	// A capital block only applies when no explicit rate is given.
	s.DiscountRate = nil
	var err error
	switch format {
	case FormatJSON:
		err = utils.DecodeLenient(data, &s)
	case FormatHJSON:
		err = utils.DecodeHJSON(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		err = fmt.Errorf("unsupported scenario format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if s.Growth.IsZero() {
		s.Growth = Default().Growth
	}
	if s.DiscountRate == nil && s.Capital == nil {
		s.DiscountRate = Default().DiscountRate
	}
	return &s, nil
}
