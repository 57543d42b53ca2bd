package commentary

import (
	"context"
	"errors"
	"testing"

	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/valuation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingProvider struct {
	prompt, system string
	reply          string
	err            error
}

func (p *recordingProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, opts llm.Options) (string, error) {
	p.prompt, p.system = prompt, systemPrompt
	return p.reply, p.err
}

func request(t *testing.T) Request {
	t.Helper()
	in, err := valuation.NewInputs(valuation.Assumptions{
		BaseRevenue:       500,
		HorizonYears:      5,
		GrowthRates:       []float64{0.1, 0.1, 0.1, 0.1, 0.1},
		EBITMarginStart:   0.10,
		EBITMarginEnd:     0.15,
		TaxRate:           0.21,
		ReinvestmentRate:  0.40,
		DiscountRate:      0.08,
		TerminalGrowth:    0.025,
		NetDebt:           100,
		SharesOutstanding: 100,
	})
	require.NoError(t, err)
	res, err := valuation.Valuate(in)
	require.NoError(t, err)
	grid := valuation.Sensitivity(in, []float64{0.07, 0.08, 0.09}, []float64{0.02, 0.025})
	return Request{Company: "TechCorp Inc", Inputs: in, Result: res, Grid: grid}
}

func TestPrompt(t *testing.T) {
	p, err := Prompt(request(t))
	require.NoError(t, err)
	assert.Contains(t, p, "Company: TechCorp Inc")
	assert.Contains(t, p, "Discount rate: 8.00%")
	assert.Contains(t, p, "Terminal growth: 2.50%")
	assert.Contains(t, p, "6 valid cells, 0 invalid")

	_, err = Prompt(Request{})
	assert.Error(t, err)
}

func TestWrite_CleansFences(t *testing.T) {
	p := &recordingProvider{reply: "```markdown\n## View\n\nTerminal value dominates.\n```"}
	w := New(p, llm.Options{}, nil)

	md, err := w.Write(context.Background(), request(t))
	require.NoError(t, err)
	assert.Equal(t, "## View\n\nTerminal value dominates.", md)
	assert.Contains(t, p.system, "equity research analyst")
	assert.Contains(t, p.prompt, "Value per share:")
}

func TestWrite_Errors(t *testing.T) {
	_, err := (&Writer{}).Write(context.Background(), request(t))
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	w := New(&recordingProvider{reply: "  "}, llm.Options{}, nil)
	_, err = w.Write(context.Background(), request(t))
	assert.ErrorIs(t, err, ErrEmpty)

	boom := errors.New("quota")
	w = New(&recordingProvider{err: boom}, llm.Options{}, nil)
	_, err = w.Write(context.Background(), request(t))
	assert.ErrorIs(t, err, boom)
}

func TestTryWrite_LogsAndContinues(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := New(llm.Static{Err: errors.New("offline")}, llm.Options{}, zap.New(core).Sugar())

	assert.Equal(t, "", w.TryWrite(context.Background(), request(t)))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "commentary skipped", logs.All()[0].Message)

	var nilWriter *Writer
	assert.Equal(t, "", nilWriter.TryWrite(context.Background(), request(t)))
}

func TestTryWrite_PrefersContextLogger(t *testing.T) {
	own, ownLogs := observer.New(zap.WarnLevel)
	scoped, scopedLogs := observer.New(zap.WarnLevel)
	w := New(llm.Static{Err: errors.New("offline")}, llm.Options{}, zap.New(own).Sugar())

	ctx := logger.WithContext(context.Background(), zap.New(scoped).Sugar().With("run_id", "r-1"))
	assert.Equal(t, "", w.TryWrite(ctx, request(t)))

	assert.Equal(t, 0, ownLogs.Len())
	require.Equal(t, 1, scopedLogs.Len())
	assert.Equal(t, "r-1", scopedLogs.All()[0].ContextMap()["run_id"])
}
