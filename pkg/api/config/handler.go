// Package config serves the defaults a client needs to build its form.
package config

import (
	"encoding/json"
	"net/http"

	coreConfig "dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/valuation"
)

type Response struct {
	DefaultScenario scenario.Scenario `json:"default_scenario"`
	Grid            GridLimits        `json:"grid"`
	Commentary      bool              `json:"commentary"`
	Units           []string          `json:"units"`
}

type GridLimits struct {
	MaxCells    int                   `json:"max_cells"`
	Ranges      valuation.RangeConfig `json:"ranges"`
	WACCFloor   float64               `json:"wacc_floor"`
	WACCCeiling float64               `json:"wacc_ceiling"`
	GrowthFloor float64               `json:"growth_floor"`
	GrowthCeil  float64               `json:"growth_ceiling"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config coreConfig.Config
}

// NewHandler creates a new config handler
func NewHandler(cfg coreConfig.Config) *Handler {
	return &Handler{Config: cfg}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := Response{
		DefaultScenario: scenario.Default(),
		Grid: GridLimits{
			MaxCells:    h.Config.Grid.MaxCells,
			Ranges:      h.Config.Grid.RangeConfig,
			WACCFloor:   valuation.WACCFloor,
			WACCCeiling: valuation.WACCCeiling,
			GrowthFloor: valuation.GrowthFloor,
			GrowthCeil:  valuation.GrowthCeiling,
		},
		Commentary: h.Config.CommentaryAvailable(),
		Units:      []string{"millions", "absolute"},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleHealth answers liveness probes.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
