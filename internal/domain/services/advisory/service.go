package advisory

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wealthlens/quant_service/internal/domain/entities"
	"github.com/wealthlens/quant_service/internal/infrastructure/ai"
	"github.com/wealthlens/quant_service/pkg/metrics"
)

// Framing selects the narrative persona for a portfolio insight.
type Framing string

const (
	// FramingRiskReview is the chief-risk-officer assessment used by the
	// analyze endpoint.
	FramingRiskReview Framing = "risk_review"
	// FramingRebalance is the tactical rebalancing check.
	FramingRebalance Framing = "rebalance"
)

// Service layers optional text-generation commentary on top of computed
// metrics. It never fails: any provider error, timeout, or missing credential
// degrades to a clearly-labeled placeholder narrative so the caller can still
// return the numeric result.
type Service struct {
	provider ai.Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates an advisory service. provider may be nil when no credential is
// configured.
func New(provider ai.Provider, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// GoalInsight narrates a goal projection.
func (s *Service) GoalInsight(ctx context.Context, req *entities.GoalSimulationRequest, projection *entities.GoalProjection) *entities.GoalInsight {
	content, ok := s.complete(ctx, goalSystemPrompt, goalPrompt(req, projection))
	if !ok {
		return placeholderGoalInsight()
	}

	var insight entities.GoalInsight
	if err := json.Unmarshal([]byte(stripFences(content)), &insight); err != nil {
		s.logger.Warn("advisory goal reply was not valid JSON", zap.Error(err))
		return placeholderGoalInsight()
	}
	return &insight
}

// RiskInsight narrates a portfolio valuation under the given framing.
func (s *Service) RiskInsight(ctx context.Context, valuation *entities.PortfolioValuation, framing Framing) *entities.RiskInsight {
	content, ok := s.complete(ctx, riskSystemPrompt, riskPrompt(valuation, framing))
	if !ok {
		return placeholderRiskInsight(framing)
	}

	var insight entities.RiskInsight
	if err := json.Unmarshal([]byte(stripFences(content)), &insight); err != nil {
		s.logger.Warn("advisory risk reply was not valid JSON", zap.Error(err))
		return placeholderRiskInsight(framing)
	}
	return &insight
}

// complete runs one bounded completion attempt; no retries for the narrative
// layer.
func (s *Service) complete(ctx context.Context, systemPrompt, prompt string) (string, bool) {
	if s.provider == nil || !s.provider.IsAvailable() {
		metrics.AdvisoryCallsTotal.WithLabelValues("none", "skipped").Inc()
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.provider.ChatCompletion(ctx, &ai.ChatRequest{
		Messages:     []ai.Message{{Role: "user", Content: prompt}},
		SystemPrompt: systemPrompt,
		ForceJSON:    true,
	})
	metrics.AdvisoryCallDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AdvisoryCallsTotal.WithLabelValues(s.provider.Name(), "degraded").Inc()
		s.logger.Warn("advisory completion failed, substituting placeholder",
			zap.String("provider", s.provider.Name()),
			zap.Error(err),
		)
		return "", false
	}

	metrics.AdvisoryCallsTotal.WithLabelValues(s.provider.Name(), "ok").Inc()
	return resp.Content, true
}

// stripFences removes a markdown code fence wrapper, which some models emit
// even when asked for raw JSON.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func placeholderGoalInsight() *entities.GoalInsight {
	return &entities.GoalInsight{
		Verdict:                      "Advisory narrative unavailable",
		Recommendations:              []string{"Quantitative metrics were computed; the AI advisory layer could not be reached."},
		InvestmentStrategySuggestion: "Review the computed metrics directly.",
		Tone:                         "neutral",
		Placeholder:                  true,
	}
}

func placeholderRiskInsight(framing Framing) *entities.RiskInsight {
	insight := &entities.RiskInsight{
		ExecutiveSummary: "Risk narrative unavailable; numeric metrics were computed normally.",
		Placeholder:      true,
	}
	// Field shapes mirror the per-framing output schemas in prompts.go.
	if framing == FramingRebalance {
		insight.RiskAssessment = "Unknown"
		insight.TacticalActions = []string{"Hold current positions until the advisory layer is reachable."}
	} else {
		insight.RebalancingStrategy = "Hold current positions"
		insight.RiskGrade = "C"
	}
	return insight
}
