package simulation

import (
	"context"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wealthlens/quant_service/internal/domain/entities"
	"github.com/wealthlens/quant_service/pkg/errors"
	"github.com/wealthlens/quant_service/pkg/metrics"
	"github.com/wealthlens/quant_service/pkg/stochastic"
)

// Assumptions is the immutable economic configuration for goal projections.
// A value is passed at construction so the engine stays side-effect-free and
// independently testable.
type Assumptions struct {
	AnnualMeanReturn float64 // long-run equity mean return
	AnnualVolatility float64 // annualized standard deviation
	InflationRate    float64
	Paths            int     // Monte Carlo path count
	MinHorizonYears  float64 // goals due in the past clamp to this horizon
}

// DefaultAssumptions returns the standard equity-market assumptions applied
// uniformly regardless of goal type.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		AnnualMeanReturn: 0.12,
		AnnualVolatility: 0.15,
		InflationRate:    0.06,
		Paths:            1000,
		MinHorizonYears:  1,
	}
}

// Service runs Monte Carlo projections of savings goals.
type Service struct {
	assumptions Assumptions
	source      stochastic.Source
	logger      *zap.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// New creates a goal projection service.
func New(assumptions Assumptions, source stochastic.Source, logger *zap.Logger) *Service {
	return &Service{
		assumptions: assumptions,
		source:      source,
		logger:      logger,
		tracer:      otel.Tracer("simulation-service"),
		now:         time.Now,
	}
}

// date layouts accepted for target_date
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// SimulateGoal projects a savings goal across s.assumptions.Paths simulated
// market paths and derives success probability, percentile scenarios, the
// required monthly contribution, and a single sample trajectory for charting.
func (s *Service) SimulateGoal(ctx context.Context, req *entities.GoalSimulationRequest) (*entities.GoalProjection, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "simulation.simulate_goal")
	defer span.End()
	_ = ctx

	years, err := s.validate(req)
	if err != nil {
		metrics.GoalSimulationsTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	months := int(math.Floor(years * 12))

	// Monthly log-normal GBM drift; the shock is a symmetric uniform draw in
	// [-1, 1], a simplified stand-in for a Gaussian shock that understates
	// tail risk.
	drift := (s.assumptions.AnnualMeanReturn - 0.5*math.Pow(s.assumptions.AnnualVolatility, 2)) / 12
	shockScale := s.assumptions.AnnualVolatility * math.Sqrt(1.0/12.0)

	n := s.assumptions.Paths
	outcomes := make([]float64, 0, n)
	successCount := 0
	var trajectory []entities.ChartPoint

	// Path 0 runs first so the chart sample stays deterministically
	// identifiable. The trajectory is one arbitrary sample path for
	// visualization, not a statistical summary.
	for i := 0; i < n; i++ {
		balance := req.CurrentAmount

		var yearly []float64
		if i == 0 {
			yearly = make([]float64, 0, months/12+1)
			yearly = append(yearly, balance)
		}

		for m := 1; m <= months; m++ {
			monthlyReturn := drift + shockScale*s.source.Next()
			balance = balance*(1+monthlyReturn) + req.MonthlyContribution
			if i == 0 && m%12 == 0 {
				yearly = append(yearly, balance)
			}
		}

		outcomes = append(outcomes, balance)
		if balance >= req.TargetAmount {
			successCount++
		}

		if i == 0 {
			trajectory = make([]entities.ChartPoint, len(yearly))
			for idx, b := range yearly {
				trajectory[idx] = entities.ChartPoint{Year: idx, Balance: math.Round(b)}
			}
		}
	}

	sort.Float64s(outcomes)

	projection := &entities.GoalProjection{
		SuccessProbability:      100 * float64(successCount) / float64(n),
		OptimisticScenario:      outcomes[int(math.Floor(float64(n)*0.9))],
		MedianScenario:          outcomes[int(math.Floor(float64(n)*0.5))],
		PessimisticScenario:     outcomes[int(math.Floor(float64(n)*0.1))],
		InflationAdjustedTarget: req.TargetAmount * math.Pow(1+s.assumptions.InflationRate, years),
		HorizonYears:            years,
		ChartTrajectory:         trajectory,
	}
	projection.RequiredMonthly = RequiredMonthly(req.TargetAmount, req.CurrentAmount, years, s.assumptions.AnnualMeanReturn)
	projection.Gap = req.TargetAmount - projection.MedianScenario

	span.SetAttributes(
		attribute.Float64("goal.horizon_years", years),
		attribute.Float64("goal.success_probability", projection.SuccessProbability),
	)
	metrics.GoalSimulationsTotal.WithLabelValues("completed").Inc()
	metrics.GoalSimulationDuration.Observe(time.Since(start).Seconds())

	s.logger.Debug("goal simulation completed",
		zap.String("goal", req.Title),
		zap.Int("paths", n),
		zap.Int("months", months),
		zap.Float64("success_probability", projection.SuccessProbability),
	)

	return projection, nil
}

// validate rejects malformed input and resolves the horizon in years.
// Goals due in the past or within the minimum horizon are clamped rather
// than rejected.
func (s *Service) validate(req *entities.GoalSimulationRequest) (float64, error) {
	if req.TargetAmount <= 0 {
		return 0, errors.InvalidInput("target_amount must be positive")
	}
	if req.CurrentAmount < 0 {
		return 0, errors.InvalidInput("current_amount must not be negative")
	}
	if req.MonthlyContribution < 0 {
		return 0, errors.InvalidInput("monthly_contribution must not be negative")
	}
	if req.TargetDate == "" {
		return 0, errors.MissingField("target_date")
	}

	var target time.Time
	var err error
	for _, layout := range dateLayouts {
		target, err = time.Parse(layout, req.TargetDate)
		if err == nil {
			break
		}
	}
	if err != nil {
		return 0, errors.InvalidInput("target_date is not a valid date").AddDetail("target_date", req.TargetDate)
	}

	years := target.Sub(s.now()).Hours() / (24 * 365)
	return math.Max(s.assumptions.MinHorizonYears, years), nil
}
