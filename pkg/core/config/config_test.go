package config

import (
	"os"
	"path/filepath"
	"testing"

	"dcf_valuation/pkg/core/valuation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dcf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 400, cfg.Grid.MaxCells)
	assert.Equal(t, valuation.DefaultRangeConfig(), cfg.Grid.RangeConfig)
	assert.False(t, cfg.CommentaryAvailable())
	assert.Nil(t, cfg.Provider())
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9090"
grid:
  max_cells: 100
  wacc_span: 3
  wacc_step: 1
commentary:
  enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 100, cfg.Grid.MaxCells)
	assert.Equal(t, 3.0, cfg.Grid.WACCSpan)
	assert.Equal(t, 1.0, cfg.Grid.WACCStep)
	// Unset keys keep defaults.
	assert.Equal(t, 0.25, cfg.Grid.GrowthStep)
	assert.Equal(t, "gemini-2.0-flash", cfg.Commentary.Model)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DCF_ADDR", ":7000")
	t.Setenv("DCF_MAX_GRID_CELLS", "64")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("DCF_GEMINI_MODEL", "gemini-x")

	cfg, err := Load(writeFile(t, "commentary:\n  enabled: true\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 64, cfg.Grid.MaxCells)
	assert.True(t, cfg.CommentaryAvailable())
	assert.NotNil(t, cfg.Provider())
	assert.Equal(t, "gemini-x", cfg.Commentary.Model)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "grid: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "grid:\n  max_cells: -1\n"))
	assert.ErrorContains(t, err, "max_cells")

	t.Setenv("DCF_MAX_GRID_CELLS", "lots")
	_, err = Load(writeFile(t, ""))
	assert.ErrorContains(t, err, "DCF_MAX_GRID_CELLS")
}
