package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wealthlens/quant_service/internal/domain/entities"
	"github.com/wealthlens/quant_service/internal/domain/services/advisory"
	"github.com/wealthlens/quant_service/internal/domain/services/risk"
	"github.com/wealthlens/quant_service/internal/domain/services/simulation"
)

// AnalysisHandlers serves the quantitative analysis endpoints.
type AnalysisHandlers struct {
	simulator *simulation.Service
	engine    *risk.Service
	advisor   *advisory.Service
	logger    *zap.Logger
}

// NewAnalysisHandlers creates the analysis handler set.
func NewAnalysisHandlers(simulator *simulation.Service, engine *risk.Service, advisor *advisory.Service, logger *zap.Logger) *AnalysisHandlers {
	return &AnalysisHandlers{
		simulator: simulator,
		engine:    engine,
		advisor:   advisor,
		logger:    logger,
	}
}

// SimulateGoal runs the Monte Carlo goal projection.
// @Summary Simulate a savings goal
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body entities.GoalSimulationRequest true "Goal parameters"
// @Success 200 {object} entities.GoalAnalysisResponse
// @Failure 400 {object} entities.ErrorResponse
// @Router /simulate-goal [post]
func (h *AnalysisHandlers) SimulateGoal(c *gin.Context) {
	var req entities.GoalSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", map[string]interface{}{"error": err.Error()})
		return
	}

	projection, err := h.simulator.SimulateGoal(c.Request.Context(), &req)
	if err != nil {
		respondAppError(c, err)
		return
	}

	// Narrative commentary is a separate, degradable step; its failure
	// never affects the numeric result.
	insight := h.advisor.GoalInsight(c.Request.Context(), &req, projection)

	c.JSON(http.StatusOK, entities.GoalAnalysisResponse{
		Metrics: entities.GoalMetrics{
			SuccessProbability:      int(math.Round(projection.SuccessProbability)),
			ProjectedValue:          math.Round(projection.MedianScenario),
			WorstCaseValue:          math.Round(projection.PessimisticScenario),
			RequiredMonthlySavings:  math.Round(projection.RequiredMonthly),
			InflationAdjustedTarget: math.Round(projection.InflationAdjustedTarget),
			GapValue:                math.Round(projection.Gap),
		},
		ChartData:  projection.ChartTrajectory,
		AIAnalysis: insight,
	})
}

type portfolioRequest struct {
	Assets []entities.Asset `json:"assets"`
	// Legacy clients send the rebalance payload under "portfolio".
	Portfolio []entities.Asset `json:"portfolio"`
}

func (r *portfolioRequest) assets() []entities.Asset {
	if len(r.Assets) > 0 {
		return r.Assets
	}
	return r.Portfolio
}

// AnalyzePortfolio revalues a portfolio and returns its full risk profile.
// @Summary Analyze portfolio risk
// @Tags analysis
// @Accept json
// @Produce json
// @Success 200 {object} entities.PortfolioAnalysisResponse
// @Failure 400 {object} entities.ErrorResponse
// @Router /analyze-portfolio [post]
func (h *AnalysisHandlers) AnalyzePortfolio(c *gin.Context) {
	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", map[string]interface{}{"error": err.Error()})
		return
	}

	valuation, err := h.engine.AnalyzePortfolio(c.Request.Context(), req.assets())
	if err != nil {
		respondAppError(c, err)
		return
	}

	insight := h.advisor.RiskInsight(c.Request.Context(), valuation, advisory.FramingRiskReview)

	c.JSON(http.StatusOK, entities.PortfolioAnalysisResponse{
		Metrics:            valuation.Metrics,
		Assets:             valuation.Assets,
		RiskOfficerInsight: insight,
	})
}

// RebalancePortfolio re-exposes the shared risk metrics as a rebalancing check.
// @Summary Evaluate portfolio rebalancing
// @Tags analysis
// @Accept json
// @Produce json
// @Success 200 {object} entities.PortfolioAnalysisResponse
// @Failure 400 {object} entities.ErrorResponse
// @Router /rebalance-portfolio [post]
func (h *AnalysisHandlers) RebalancePortfolio(c *gin.Context) {
	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", map[string]interface{}{"error": err.Error()})
		return
	}

	valuation, err := h.engine.EvaluateRebalance(c.Request.Context(), req.assets())
	if err != nil {
		respondAppError(c, err)
		return
	}

	insight := h.advisor.RiskInsight(c.Request.Context(), valuation, advisory.FramingRebalance)

	c.JSON(http.StatusOK, entities.PortfolioAnalysisResponse{
		Metrics:            valuation.Metrics,
		Assets:             valuation.Assets,
		RiskOfficerInsight: insight,
	})
}
