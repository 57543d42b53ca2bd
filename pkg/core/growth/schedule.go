// Package growth builds annual revenue growth schedules for the valuation
// engine. The engine only consumes a finished []float64; these helpers are
// the input-side conveniences (single CAGR, per-year list, deceleration).
package growth

import (
	"fmt"
	"strings"
)

// Method selects how a Schedule is turned into per-year rates.
type Method string

const (
	MethodPerYear Method = "per_year"
	MethodCAGR    Method = "cagr"
)

// DecelerationStart is the last year that keeps the full CAGR when
// deceleration is enabled.
const DecelerationStart = 5

// Schedule is the declarative form of a growth path as it appears in
// scenario files and API requests.
type Schedule struct {
	Method     Method    `json:"method" yaml:"method"`
	CAGR       *float64  `json:"cagr,omitempty" yaml:"cagr,omitempty"` // nil when absent; 0 is a valid rate
	Decelerate bool      `json:"decelerate,omitempty" yaml:"decelerate,omitempty"`
	Rates      []float64 `json:"rates,omitempty" yaml:"rates,omitempty"`
}

// Rate returns a pointer to v, for optional rate fields.
func Rate(v float64) *float64 {
	return &v
}

// IsZero reports whether nothing at all was specified.
func (s Schedule) IsZero() bool {
	return s.Method == "" && s.CAGR == nil && !s.Decelerate && len(s.Rates) == 0
}

// Build resolves the schedule into exactly years rates.
func (s Schedule) Build(years int) ([]float64, error) {
	if years <= 0 {
		return nil, fmt.Errorf("years must be positive, got %d", years)
	}

	method := Method(strings.ToLower(string(s.Method)))
	if method == "" {
		// Explicit rates win when no method is given.
		method = MethodCAGR
		if len(s.Rates) > 0 {
			method = MethodPerYear
		}
	}

	switch method {
	case MethodPerYear:
		if len(s.Rates) != years {
			return nil, fmt.Errorf("per-year growth needs %d rates, got %d", years, len(s.Rates))
		}
		return PerYear(s.Rates), nil
	case MethodCAGR:
		if s.CAGR == nil {
			return nil, fmt.Errorf("cagr growth needs a cagr value")
		}
		if s.Decelerate {
			return Decelerating(*s.CAGR, years), nil
		}
		return Constant(*s.CAGR, years), nil
	default:
		return nil, fmt.Errorf("unknown growth method %q", s.Method)
	}
}

// PerYear returns a copy of an explicit list of rates.
func PerYear(rates []float64) []float64 {
	return append([]float64(nil), rates...)
}

// Constant applies the same rate in every year.
func Constant(cagr float64, years int) []float64 {
	out := make([]float64, years)
	for i := range out {
		out[i] = cagr
	}
	return out
}

// Decelerating keeps cagr for the first five years, then tapers.
//
// FORMULA (y > 5): g(y) = cagr × (1 - (y-5)/(years-5)) × 0.5
//
// The taper reaches zero in the final year. Horizons of five years or less
// never decelerate.
func Decelerating(cagr float64, years int) []float64 {
	out := make([]float64, years)
	for i := range out {
		y := i + 1
		if y > DecelerationStart {
			out[i] = cagr * (1 - float64(y-DecelerationStart)/float64(years-DecelerationStart)) * 0.5
			continue
		}
		out[i] = cagr
	}
	return out
}
