// Package commentary drafts a short analyst note for a finished valuation
// using an LLM provider. Commentary is optional: when it fails the caller
// still has the valuation.
package commentary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/core/valuation"

	"go.uber.org/zap"
)

// ErrEmpty is returned when the provider answered with no usable markdown.
var ErrEmpty = errors.New("commentary: empty response")

const systemPrompt = `You are an equity research analyst. Write a concise markdown note
(at most three short paragraphs) on a discounted cash flow valuation. Discuss how much
of the value comes from the terminal value and how sensitive the result is to the
discount rate and terminal growth. Do not invent figures that are not in the prompt.`

var userPrompt = template.Must(template.New("commentary").Parse(
	`Company: {{.Company}}
Enterprise value: {{printf "%.2f" .Result.EnterpriseValue}}
Equity value: {{printf "%.2f" .Result.EquityValue}}
Value per share: {{printf "%.2f" .Result.ValuePerShare}}
Terminal value share of EV: {{printf "%.1f" .TerminalPct}}%
Discount rate: {{printf "%.2f" .DiscountPct}}%
Terminal growth: {{printf "%.2f" .GrowthPct}}%
{{- with .Grid}}
Sensitivity grid: {{.Valid}} valid cells, {{.Invalid}} invalid, value per share from {{printf "%.2f" .Min}} to {{printf "%.2f" .Max}} (median {{printf "%.2f" .Median}})
{{- end}}
`))

// Request is the data the note is written about.
type Request struct {
	Company string
	Inputs  *valuation.Inputs
	Result  *valuation.Result
	Grid    *valuation.Grid
}

type promptData struct {
	Company     string
	Result      *valuation.Result
	TerminalPct float64
	DiscountPct float64
	GrowthPct   float64
	Grid        *valuation.GridSummary
}

// Writer generates commentary through Provider.
type Writer struct {
	Provider llm.Provider
	Options  llm.Options
	Log      *zap.SugaredLogger
}

// New returns a Writer that logs through log.
func New(p llm.Provider, opts llm.Options, log *zap.SugaredLogger) *Writer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Writer{Provider: p, Options: opts, Log: log}
}

func (w *Writer) logger() *zap.SugaredLogger {
	if w.Log == nil {
		return zap.NewNop().Sugar()
	}
	return w.Log
}

// Prompt renders the user prompt for req.
func Prompt(req Request) (string, error) {
	if req.Result == nil || req.Inputs == nil {
		return "", fmt.Errorf("commentary: valuation result missing")
	}
	data := promptData{
		Company:     req.Company,
		Result:      req.Result,
		TerminalPct: req.Result.TerminalShare() * 100,
		DiscountPct: req.Inputs.DiscountRate() * 100,
		GrowthPct:   req.Inputs.TerminalGrowth() * 100,
	}
	if req.Grid != nil && req.Grid.Size() > 0 {
		s := req.Grid.Summary()
		data.Grid = &s
	}
	var buf bytes.Buffer
	if err := userPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render commentary prompt: %w", err)
	}
	return buf.String(), nil
}

// Write asks the provider for a note and returns cleaned markdown.
func (w *Writer) Write(ctx context.Context, req Request) (string, error) {
	if w == nil || w.Provider == nil {
		return "", llm.ErrNotConfigured
	}
	prompt, err := Prompt(req)
	if err != nil {
		return "", err
	}

	raw, err := w.Provider.GenerateResponse(ctx, prompt, systemPrompt, w.Options)
	if err != nil {
		return "", fmt.Errorf("commentary generation failed: %w", err)
	}

	md := utils.CleanMarkdown(raw)
	if !utils.ValidateMarkdown(md) {
		return "", ErrEmpty
	}
	w.logger().Debugw("commentary generated", "company", req.Company, "chars", len(md))
	return md, nil
}

// TryWrite is Write for callers that carry on without commentary: failures
// are logged, through the logger in ctx when there is one, and yield "".
func (w *Writer) TryWrite(ctx context.Context, req Request) string {
	if w == nil || w.Provider == nil {
		return ""
	}
	md, err := w.Write(ctx, req)
	if err != nil {
		logger.FromContextOr(ctx, w.logger()).Warnw("commentary skipped", "company", req.Company, "error", err)
		return ""
	}
	return md
}
