package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	coreConfig "dcf_valuation/pkg/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleConfig(t *testing.T) {
	h := NewHandler(coreConfig.Default())
	rec := httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TechCorp Inc", resp.DefaultScenario.Company)
	assert.Equal(t, 400, resp.Grid.MaxCells)
	assert.Equal(t, 2.0, resp.Grid.Ranges.WACCSpan)
	assert.Equal(t, 25.0, resp.Grid.WACCCeiling)
	assert.False(t, resp.Commentary)

	rec = httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest(http.MethodPost, "/api/config", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
