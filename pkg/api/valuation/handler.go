// Package valuation serves the DCF engine over HTTP.
package valuation

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"dcf_valuation/pkg/core/commentary"
	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/export"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/metrics"
	"dcf_valuation/pkg/core/report"
	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/valuation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler holds dependencies for the valuation endpoints.
type Handler struct {
	Config     config.Config
	Metrics    *metrics.Metrics
	Commentary *commentary.Writer
	Log        *zap.SugaredLogger

	validate *validator.Validate
}

// NewHandler creates a valuation handler. m, w and log may be nil.
func NewHandler(cfg config.Config, m *metrics.Metrics, w *commentary.Writer, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		Config:     cfg,
		Metrics:    m,
		Commentary: w,
		Log:        log,
		validate:   newValidator(),
	}
}

// Register mounts the endpoints on mux, instrumented when metrics are set.
func (h *Handler) Register(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"/api/valuation":             h.HandleValuation,
		"/api/valuation/sensitivity": h.HandleSensitivity,
		"/api/valuation/report":      h.HandleReport,
		"/api/valuation/export":      h.HandleExport,
	}
	for route, fn := range routes {
		fn = h.withRun(fn)
		if h.Metrics != nil {
			fn = h.Metrics.Instrument(route, fn)
		}
		mux.HandleFunc(route, fn)
	}
}

type runIDKey struct{}

// withRun gives each request a run id and puts a logger scoped to it in the
// request context.
func (h *Handler) withRun(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), runIDKey{}, id)
		ctx = logger.WithContext(ctx, h.Log.With("run_id", id))
		next(w, r.WithContext(ctx))
	}
}

func runID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// log returns the request-scoped logger, or the handler's own.
func (h *Handler) log(ctx context.Context) *zap.SugaredLogger {
	return logger.FromContextOr(ctx, h.Log)
}

// ValuationResponse is returned by POST /api/valuation.
type ValuationResponse struct {
	RunID       string               `json:"run_id"`
	Company     string               `json:"company"`
	Result      *valuation.Result    `json:"result"`
	Charts      Charts               `json:"charts"`
	Sensitivity *SensitivityResponse `json:"sensitivity,omitempty"`
	Commentary  string               `json:"commentary,omitempty"`
}

// Charts are the series a client plots: revenue and FCF by year, the EBIT
// margin path, the NOPAT to reinvestment to FCF bridge, and the EV split.
type Charts struct {
	Forecast    valuation.ForecastColumns `json:"forecast"`
	Composition valuation.Composition     `json:"composition"`
}

func chartsFor(res *valuation.Result) Charts {
	return Charts{Forecast: res.Columns(), Composition: res.Composition()}
}

// SensitivityResponse is a grid with its summary and base-case position.
// Invalid cells serialise as null.
type SensitivityResponse struct {
	RunID   string                `json:"run_id,omitempty"`
	Grid    *valuation.Grid       `json:"grid"`
	Summary valuation.GridSummary `json:"summary"`
	BaseRow int                   `json:"base_row"`
	BaseCol int                   `json:"base_col"`
}

// run is one evaluated request.
type run struct {
	id       string
	scenario *scenario.Scenario
	opts     Options
	inputs   *valuation.Inputs
	result   *valuation.Result
	grid     *valuation.Grid
}

// prepare decodes and validates the request and computes the base case.
// Errors have already been written when ok is false.
func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (*run, bool) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return nil, false
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return nil, false
	}

	s, opts, err := h.decodeRequest(r)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return nil, false
	}

	in, err := s.Inputs()
	if err != nil {
		h.Metrics.RecordValuation(metrics.OutcomeInvalid)
		writeError(w, err, http.StatusUnprocessableEntity)
		return nil, false
	}

	res, err := valuation.Valuate(in)
	if err != nil {
		h.Metrics.RecordValuation(metrics.OutcomeError)
		writeError(w, err, http.StatusInternalServerError)
		return nil, false
	}
	h.Metrics.RecordValuation(metrics.OutcomeOK)

	return &run{id: runID(r.Context()), scenario: s, opts: opts, inputs: in, result: res}, true
}

// buildGrid computes the sensitivity grid, enforcing grid.max_cells.
func (h *Handler) buildGrid(rn *run) error {
	rates, growths := rn.scenario.Ranges(rn.inputs, h.Config.Grid.RangeConfig)
	if n := len(rates) * len(growths); n > h.Config.Grid.MaxCells {
		return &requestError{
			Field: "sensitivity",
			Err:   fmt.Errorf("sensitivity grid of %d cells exceeds the limit of %d", n, h.Config.Grid.MaxCells),
		}
	}
	rn.grid = valuation.Sensitivity(rn.inputs, rates, growths)
	invalid := rn.grid.InvalidCount()
	h.Metrics.RecordGrid(rn.grid.Size()-invalid, invalid)
	return nil
}

func (rn *run) sensitivity() *SensitivityResponse {
	row, col := rn.grid.BaseCell(rn.inputs.DiscountRate(), rn.inputs.TerminalGrowth())
	return &SensitivityResponse{
		RunID:   rn.id,
		Grid:    rn.grid,
		Summary: rn.grid.Summary(),
		BaseRow: row,
		BaseCol: col,
	}
}

func (h *Handler) noteFor(ctx context.Context, rn *run) string {
	if !rn.opts.Commentary || h.Commentary == nil {
		return ""
	}
	return h.Commentary.TryWrite(ctx, commentary.Request{
		Company: rn.scenario.Company,
		Inputs:  rn.inputs,
		Result:  rn.result,
		Grid:    rn.grid,
	})
}

// HandleValuation handles POST /api/valuation.
func (h *Handler) HandleValuation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rn, ok := h.prepare(w, r)
	if !ok {
		return
	}

	resp := ValuationResponse{
		RunID:   rn.id,
		Company: rn.scenario.Company,
		Result:  rn.result,
		Charts:  chartsFor(rn.result),
	}
	if rn.opts.IncludeSensitivity {
		if err := h.buildGrid(rn); err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		resp.Sensitivity = rn.sensitivity()
	}
	resp.Commentary = h.noteFor(r.Context(), rn)

	h.log(r.Context()).Infow("valuation complete",
		"company", rn.scenario.Company,
		"years", rn.inputs.HorizonYears(),
		"value_per_share", rn.result.ValuePerShare,
		"elapsed", time.Since(start),
	)
	writeJSON(w, http.StatusOK, resp)
}

// HandleSensitivity handles POST /api/valuation/sensitivity.
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	rn, ok := h.prepare(w, r)
	if !ok {
		return
	}
	if err := h.buildGrid(rn); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	h.log(r.Context()).Infow("sensitivity complete",
		"cells", rn.grid.Size(),
		"invalid_cells", rn.grid.InvalidCount(),
	)
	writeJSON(w, http.StatusOK, rn.sensitivity())
}

// HandleReport handles POST /api/valuation/report and returns an HTML page.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	rn, ok := h.prepare(w, r)
	if !ok {
		return
	}
	if err := h.buildGrid(rn); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	page, err := report.HTML(report.Document{
		Company:    rn.scenario.Company,
		Inputs:     rn.inputs,
		Result:     rn.result,
		Grid:       rn.grid,
		Units:      rn.opts.ExportUnits(),
		Commentary: h.noteFor(r.Context(), rn),
	})
	if err != nil {
		h.log(r.Context()).Errorw("report rendering failed", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Run-ID", rn.id)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// HandleExport handles POST /api/valuation/export?kind=... and returns CSV.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	kindParam := r.URL.Query().Get("kind")
	if kindParam == "" {
		kindParam = string(export.KindForecast)
	}
	kind, err := export.ParseKind(kindParam)
	if err != nil {
		writeError(w, &requestError{Field: "kind", Err: err}, http.StatusBadRequest)
		return
	}

	rn, ok := h.prepare(w, r)
	if !ok {
		return
	}
	if kind == export.KindSensitivity {
		if err := h.buildGrid(rn); err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
	}

	var buf bytes.Buffer
	err = export.Write(&buf, kind, export.Bundle{
		Company: rn.scenario.Company,
		Inputs:  rn.inputs,
		Result:  rn.result,
		Grid:    rn.grid,
		Units:   rn.opts.ExportUnits(),
	})
	if err != nil {
		h.log(r.Context()).Errorw("export failed", "kind", kind, "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(rn.scenario.FileStem(), kind)))
	w.Header().Set("X-Run-ID", rn.id)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
