package risk

import (
	"context"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wealthlens/quant_service/internal/domain/entities"
	"github.com/wealthlens/quant_service/pkg/metrics"
	"github.com/wealthlens/quant_service/pkg/stochastic"
)

// Config is the immutable risk-engine configuration. The two diversification
// calibration constants intentionally differ between the analyze and
// rebalance entry points; they are independently tunable and must not be
// unified without product guidance.
type Config struct {
	RiskFreeRate            float64 // 10-year treasury benchmark
	ExpectedPortfolioReturn float64 // flat target-return assumption for Sharpe
	VaRConfidenceZ          float64 // z-score for 95% confidence
	AnnualDrift             float64 // drift of the one-step revaluation
	DefaultVolatility       float64 // fallback for unknown asset types
	VolatilityByType        map[entities.AssetType]float64
	AnalyzeDiversificationK float64
	RebalanceDiversityK     float64
}

// DefaultConfig returns the institutional assumptions used in production.
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:            0.045,
		ExpectedPortfolioReturn: 0.08,
		VaRConfidenceZ:          1.65,
		AnnualDrift:             0.05,
		DefaultVolatility:       0.20,
		VolatilityByType: map[entities.AssetType]float64{
			entities.AssetTypeCrypto:       0.78,
			entities.AssetTypeDefi:         0.95,
			entities.AssetTypeStock:        0.18,
			entities.AssetTypeRealEstate:   0.08,
			entities.AssetTypeBond:         0.05,
			entities.AssetTypeCash:         0.005,
			entities.AssetTypeCollectibles: 0.25,
		},
		AnalyzeDiversificationK: 135,
		RebalanceDiversityK:     125,
	}
}

// liquid asset classes; everything else counts as illiquid.
var liquidTypes = map[entities.AssetType]bool{
	entities.AssetTypeStock:  true,
	entities.AssetTypeCrypto: true,
	entities.AssetTypeCash:   true,
	entities.AssetTypeBond:   true,
}

// tradingDayDt is the one-trading-day step of the revaluation.
const tradingDayDt = 1.0 / 252.0

// Service revalues portfolios under a stochastic one-step price shock and
// computes aggregate risk metrics. It backs both the analyze-portfolio and
// rebalance-portfolio entry points.
type Service struct {
	cfg    Config
	source stochastic.Source
	logger *zap.Logger
	tracer trace.Tracer
}

// New creates a risk engine.
func New(cfg Config, source stochastic.Source, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		source: source,
		logger: logger,
		tracer: otel.Tracer("risk-service"),
	}
}

// AnalyzePortfolio runs the full risk-engine variant: revaluation, aggregate
// metrics, diversification with the analyze calibration, and liquidity ratio.
func (s *Service) AnalyzePortfolio(ctx context.Context, assets []entities.Asset) (*entities.PortfolioValuation, error) {
	return s.score(ctx, assets, "analyze")
}

// EvaluateRebalance re-exposes the shared metrics under the rebalancing-check
// framing: the rebalance diversification calibration and no liquidity ratio.
// Tactical signal generation is delegated to the advisory collaborator.
func (s *Service) EvaluateRebalance(ctx context.Context, assets []entities.Asset) (*entities.PortfolioValuation, error) {
	return s.score(ctx, assets, "rebalance")
}

func (s *Service) score(ctx context.Context, assets []entities.Asset, entryPoint string) (*entities.PortfolioValuation, error) {
	ctx, span := s.tracer.Start(ctx, "risk.score", trace.WithAttributes(
		attribute.String("entry_point", entryPoint),
		attribute.Int("asset_count", len(assets)),
	))
	defer span.End()
	_ = ctx

	processed, totals := s.revalue(assets, entryPoint == "analyze")

	valuation := &entities.PortfolioValuation{
		Assets: processed,
		Metrics: entities.RiskMetrics{
			TotalNAV: totals.nav,
		},
	}

	// All ratios stay exactly 0 for an empty or worthless portfolio.
	if totals.nav > 0 {
		vol := totals.weightedVolatility / totals.nav
		valuation.Metrics.PortfolioVolatility = vol
		valuation.Metrics.SharpeRatio = s.sharpeRatio(vol)
		valuation.Metrics.ValueAtRisk95Monthly = totals.nav * s.cfg.VaRConfidenceZ * (vol / math.Sqrt(12))
	}

	k := s.cfg.AnalyzeDiversificationK
	if entryPoint == "rebalance" {
		k = s.cfg.RebalanceDiversityK
	}
	valuation.Metrics.DiversificationScore = s.diversificationScore(processed, totals.nav, k)

	if entryPoint == "analyze" {
		ratio := 0.0
		if totals.nav > 0 {
			ratio = 100 * totals.liquidNAV / totals.nav
		}
		valuation.Metrics.LiquidityRatio = &ratio
	}

	metrics.PortfolioValuationsTotal.WithLabelValues(entryPoint).Inc()
	span.SetAttributes(attribute.Float64("portfolio.total_nav", totals.nav))

	s.logger.Debug("portfolio scored",
		zap.String("entry_point", entryPoint),
		zap.Int("assets", len(assets)),
		zap.Float64("total_nav", totals.nav),
		zap.Int("diversification_score", valuation.Metrics.DiversificationScore),
	)

	return valuation, nil
}

type aggregates struct {
	nav                float64
	weightedVolatility float64
	liquidNAV          float64
}

// revalue simulates one "current" price per asset via a single-step GBM
// perturbation. This models live price movement in the absence of a real
// feed; it is a placeholder, not a forecast.
func (s *Service) revalue(assets []entities.Asset, classifyLiquidity bool) ([]entities.ProcessedAsset, aggregates) {
	processed := make([]entities.ProcessedAsset, 0, len(assets))
	var totals aggregates

	for _, asset := range assets {
		volatility := s.volatilityFor(asset.Type)

		shock := s.source.Next()
		currentPrice := asset.Value*(s.cfg.AnnualDrift*tradingDayDt+volatility*shock*math.Sqrt(tradingDayDt)) + asset.Value
		totalValue := currentPrice * asset.Quantity

		totals.nav += totalValue
		totals.weightedVolatility += totalValue * volatility

		p := entities.ProcessedAsset{
			Asset:        asset,
			CurrentPrice: currentPrice,
			TotalValue:   totalValue,
			Volatility:   volatility,
		}
		if classifyLiquidity {
			if liquidTypes[asset.Type] {
				totals.liquidNAV += totalValue
				p.LiquidityTier = entities.LiquidityTierHigh
			} else {
				p.LiquidityTier = entities.LiquidityTierLow
			}
		}
		processed = append(processed, p)
	}

	return processed, totals
}

// volatilityFor is a total lookup; unknown types never fail.
func (s *Service) volatilityFor(t entities.AssetType) float64 {
	if v, ok := s.cfg.VolatilityByType[t]; ok {
		return v
	}
	return s.cfg.DefaultVolatility
}

// sharpeRatio computes the excess-return-to-volatility ratio, defined as 0
// when volatility is 0.
func (s *Service) sharpeRatio(portfolioVolatility float64) float64 {
	if portfolioVolatility == 0 {
		return 0
	}
	return (s.cfg.ExpectedPortfolioReturn - s.cfg.RiskFreeRate) / portfolioVolatility
}

// diversificationScore inverts the Herfindahl-Hirschman index of asset-class
// concentration and scales it by the entry point's calibration constant,
// clamped to [0, 100].
func (s *Service) diversificationScore(assets []entities.ProcessedAsset, totalNAV float64, k float64) int {
	if totalNAV == 0 {
		return 0
	}

	typeWeights := make(map[entities.AssetType]float64)
	for _, a := range assets {
		typeWeights[a.Type] += a.TotalValue
	}

	hhi := 0.0
	for _, val := range typeWeights {
		weight := val / totalNAV
		hhi += weight * weight
	}

	score := math.Round((1 - hhi) * k)
	return int(math.Max(0, math.Min(100, score)))
}
