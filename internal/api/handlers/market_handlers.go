package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wealthlens/quant_service/internal/infrastructure/marketdata"
	apperrors "github.com/wealthlens/quant_service/pkg/errors"
)

// MarketHandlers proxies live quote lookups to the market data provider.
type MarketHandlers struct {
	quotes *marketdata.Client
	logger *zap.Logger
}

func NewMarketHandlers(quotes *marketdata.Client, logger *zap.Logger) *MarketHandlers {
	return &MarketHandlers{quotes: quotes, logger: logger}
}

type quoteRequest struct {
	Symbol string `json:"symbol"`
}

// GetQuote fetches the latest quote for a symbol.
// @Summary Fetch a market quote
// @Tags market-data
// @Accept json
// @Produce json
// @Param request body quoteRequest true "Symbol to quote"
// @Success 200 {object} marketdata.Quote
// @Failure 400 {object} entities.ErrorResponse
// @Failure 502 {object} entities.ErrorResponse
// @Router /market-data [post]
func (h *MarketHandlers) GetQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", map[string]interface{}{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		respondAppError(c, apperrors.MissingField("symbol"))
		return
	}

	if h.quotes == nil || !h.quotes.Configured() {
		respondAppError(c, apperrors.UpstreamUnavailable("market-data", nil))
		return
	}

	quote, err := h.quotes.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		h.logger.Warn("quote fetch failed", zap.String("symbol", symbol), zap.Error(err))
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}
