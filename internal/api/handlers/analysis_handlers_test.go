package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wealthlens/quant_service/internal/api/handlers"
	"github.com/wealthlens/quant_service/internal/domain/entities"
	"github.com/wealthlens/quant_service/internal/domain/services/advisory"
	"github.com/wealthlens/quant_service/internal/domain/services/risk"
	"github.com/wealthlens/quant_service/internal/domain/services/simulation"
	"github.com/wealthlens/quant_service/pkg/stochastic"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zaptest.NewLogger(t)
	simulator := simulation.New(simulation.DefaultAssumptions(), stochastic.NewFixed(), log)
	engine := risk.New(risk.DefaultConfig(), stochastic.NewFixed(), log)
	advisor := advisory.New(nil, time.Second, log)

	h := handlers.NewAnalysisHandlers(simulator, engine, advisor, log)

	router := gin.New()
	router.POST("/api/v1/simulate-goal", h.SimulateGoal)
	router.POST("/api/v1/analyze-portfolio", h.AnalyzePortfolio)
	router.POST("/api/v1/rebalance-portfolio", h.RebalancePortfolio)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSimulateGoal_Endpoint(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/simulate-goal", map[string]interface{}{
		"title":                "House deposit",
		"target_amount":        500_000,
		"current_amount":       100_000,
		"monthly_contribution": 1_000,
		"target_date":          "2031-08-31",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp entities.GoalAnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.GreaterOrEqual(t, resp.Metrics.SuccessProbability, 0)
	assert.LessOrEqual(t, resp.Metrics.SuccessProbability, 100)
	assert.Greater(t, resp.Metrics.ProjectedValue, 0.0)
	assert.Greater(t, resp.Metrics.InflationAdjustedTarget, 500_000.0)
	// Monetary wire values are rounded to whole units.
	assert.Equal(t, resp.Metrics.ProjectedValue, float64(int64(resp.Metrics.ProjectedValue)))

	require.NotEmpty(t, resp.ChartData)
	assert.Equal(t, 100_000.0, resp.ChartData[0].Balance)

	// No provider configured: narrative degrades, numbers still present.
	require.NotNil(t, resp.AIAnalysis)
	assert.True(t, resp.AIAnalysis.Placeholder)
}

func TestSimulateGoal_InvalidBody(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulate-goal", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp entities.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Code)
}

func TestSimulateGoal_ValidationError(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/simulate-goal", map[string]interface{}{
		"target_amount": -5,
		"target_date":   "2031-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzePortfolio_Endpoint(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/analyze-portfolio", map[string]interface{}{
		"assets": []map[string]interface{}{
			{"symbol": "BTC", "type": "crypto", "quantity": 1, "value": 30_000},
			{"symbol": "TLT", "type": "bond", "quantity": 100, "value": 300},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp entities.PortfolioAnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Greater(t, resp.Metrics.TotalNAV, 0.0)
	assert.NotNil(t, resp.Metrics.LiquidityRatio)
	assert.Len(t, resp.Assets, 2)
	require.NotNil(t, resp.RiskOfficerInsight)
	assert.True(t, resp.RiskOfficerInsight.Placeholder)
}

func TestAnalyzePortfolio_EmptyAssets(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/analyze-portfolio", map[string]interface{}{"assets": []interface{}{}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp entities.PortfolioAnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.Metrics.TotalNAV)
	assert.Equal(t, 0, resp.Metrics.DiversificationScore)
}

func TestRebalancePortfolio_Endpoint(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/rebalance-portfolio", map[string]interface{}{
		"assets": []map[string]interface{}{
			{"symbol": "ETH", "type": "crypto", "quantity": 10, "value": 2_000},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp entities.PortfolioAnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// The rebalance entry point reports no liquidity ratio.
	assert.Nil(t, resp.Metrics.LiquidityRatio)
}

func TestRebalancePortfolio_LegacyPortfolioKey(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/rebalance-portfolio", map[string]interface{}{
		"portfolio": []map[string]interface{}{
			{"symbol": "AAPL", "type": "stock", "quantity": 5, "value": 200},
			{"symbol": "USD", "type": "cash", "quantity": 1, "value": 1_000},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp entities.PortfolioAnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Assets, 2)
	assert.Greater(t, resp.Metrics.TotalNAV, 0.0)
}
