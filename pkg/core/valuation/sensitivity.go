package valuation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// =============================================================================
// GRID CELLS
// =============================================================================

// Cell is one sensitivity outcome: a value per share, or an explicit invalid
// marker with the reason the combination has no value.
type Cell struct {
	Value  float64
	Valid  bool
	Reason string
}

// MarshalJSON encodes valid cells as a number and invalid cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

func invalidCell(reason string) Cell {
	return Cell{Reason: reason}
}

// =============================================================================
// GRID
// =============================================================================

// Grid holds value per share across terminal growth (rows) and discount
// rate (columns). Both axes are sorted ascending without duplicates.
type Grid struct {
	DiscountRates       []float64 `json:"discount_rates"`
	TerminalGrowthRates []float64 `json:"terminal_growth_rates"`
	Cells               [][]Cell  `json:"cells"` // [row][col]
}

// Sensitivity re-runs the full valuation for every (terminal growth,
// discount rate) pair, holding every other assumption of base fixed.
//
// Pairs with rate <= growth are marked invalid without computing. Any
// other failure is contained in its own cell.
func Sensitivity(base *Inputs, discountRates, terminalGrowthRates []float64) *Grid {
	rates := sortedUnique(discountRates)
	growths := sortedUnique(terminalGrowthRates)

	cells := make([][]Cell, len(growths))
	for i, g := range growths {
		row := make([]Cell, len(rates))
		for j, r := range rates {
			row[j] = evaluateCell(base, r, g)
		}
		cells[i] = row
	}

	return &Grid{
		DiscountRates:       rates,
		TerminalGrowthRates: growths,
		Cells:               cells,
	}
}

func evaluateCell(base *Inputs, rate, growth float64) Cell {
	if rate <= growth {
		return invalidCell("discount rate must exceed terminal growth")
	}
	if base == nil {
		return invalidCell("no base inputs")
	}
	in, err := base.WithRates(rate, growth)
	if err != nil {
		return invalidCell(err.Error())
	}
	res, err := Valuate(in)
	if err != nil {
		return invalidCell(err.Error())
	}
	if math.IsNaN(res.ValuePerShare) || math.IsInf(res.ValuePerShare, 0) {
		return invalidCell(fmt.Sprintf("value per share is not finite (%v)", res.ValuePerShare))
	}
	return Cell{Value: res.ValuePerShare, Valid: true}
}

func sortedUnique(values []float64) []float64 {
	out := append([]float64(nil), values...)
	sort.Float64s(out)
	n := 0
	for i, v := range out {
		if i > 0 && v == out[n-1] {
			continue
		}
		out[n] = v
		n++
	}
	return out[:n]
}

// At returns the cell for an exact (terminal growth, discount rate) key.
func (g *Grid) At(growth, rate float64) (Cell, bool) {
	i := indexOf(g.TerminalGrowthRates, growth)
	j := indexOf(g.DiscountRates, rate)
	if i < 0 || j < 0 {
		return Cell{}, false
	}
	return g.Cells[i][j], true
}

func indexOf(axis []float64, v float64) int {
	i := sort.SearchFloat64s(axis, v)
	if i < len(axis) && axis[i] == v {
		return i
	}
	return -1
}

// InvalidCount is the number of cells without a value.
func (g *Grid) InvalidCount() int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if !c.Valid {
				n++
			}
		}
	}
	return n
}

// Size is rows × columns.
func (g *Grid) Size() int {
	return len(g.TerminalGrowthRates) * len(g.DiscountRates)
}

// BaseCell returns the row and column nearest to the base-case rates.
// Both are -1 for an empty axis.
func (g *Grid) BaseCell(rate, growth float64) (row, col int) {
	return nearest(g.TerminalGrowthRates, growth), nearest(g.DiscountRates, rate)
}

func nearest(axis []float64, v float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, a := range axis {
		if d := math.Abs(a - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// =============================================================================
// SUMMARY
// =============================================================================

// GridSummary describes the spread of valid values in a grid.
type GridSummary struct {
	Valid   int     `json:"valid"`
	Invalid int     `json:"invalid"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
}

// Summary computes counts and statistics over the valid cells.
func (g *Grid) Summary() GridSummary {
	var data stats.Float64Data
	invalidCount := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if c.Valid {
				data = append(data, c.Value)
			} else {
				invalidCount++
			}
		}
	}

	s := GridSummary{Valid: len(data), Invalid: invalidCount}
	if len(data) == 0 {
		return s
	}
	// Errors only occur on empty input, checked above.
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	return s
}

// Position maps v onto [0,1] between Min and Max; 0.5 when the range is flat.
func (s GridSummary) Position(v float64) float64 {
	if s.Max <= s.Min {
		return 0.5
	}
	return (v - s.Min) / (s.Max - s.Min)
}
