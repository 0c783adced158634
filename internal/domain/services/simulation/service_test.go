package simulation

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wealthlens/quant_service/internal/domain/entities"
	"github.com/wealthlens/quant_service/pkg/errors"
	"github.com/wealthlens/quant_service/pkg/stochastic"
)

func fixedNow() time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, source stochastic.Source) *Service {
	t.Helper()
	svc := New(DefaultAssumptions(), source, zaptest.NewLogger(t))
	svc.now = fixedNow
	return svc
}

func TestSimulateGoal_DeterministicDriftOnly(t *testing.T) {
	// A zero-shock source collapses every path to pure drift, so all 1000
	// outcomes are identical and every percentile equals the single outcome.
	svc := newTestService(t, stochastic.NewFixed())

	req := &entities.GoalSimulationRequest{
		Title:               "House deposit",
		TargetAmount:        500_000,
		CurrentAmount:       100_000,
		MonthlyContribution: 1_000,
		TargetDate:          "2030-01-01",
	}

	proj, err := svc.SimulateGoal(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, proj.MedianScenario, proj.OptimisticScenario)
	assert.Equal(t, proj.MedianScenario, proj.PessimisticScenario)

	// Replay the drift recurrence by hand.
	drift := (0.12 - 0.5*0.15*0.15) / 12
	balance := req.CurrentAmount
	for m := 0; m < 60; m++ {
		balance = balance*(1+drift) + req.MonthlyContribution
	}
	assert.InDelta(t, balance, proj.MedianScenario, 1e-6)

	// Every identical path either clears the target or none do.
	if proj.MedianScenario >= req.TargetAmount {
		assert.Equal(t, 100.0, proj.SuccessProbability)
	} else {
		assert.Equal(t, 0.0, proj.SuccessProbability)
	}
}

func TestSimulateGoal_ChartTrajectory(t *testing.T) {
	svc := newTestService(t, stochastic.NewFixed())

	req := &entities.GoalSimulationRequest{
		TargetAmount:        500_000,
		CurrentAmount:       100_000,
		MonthlyContribution: 1_000,
		TargetDate:          "2030-01-01",
	}

	proj, err := svc.SimulateGoal(context.Background(), req)
	require.NoError(t, err)

	// ~5 year horizon: one point per completed year plus the starting point.
	require.Len(t, proj.ChartTrajectory, 6)
	assert.Equal(t, 0, proj.ChartTrajectory[0].Year)
	assert.Equal(t, req.CurrentAmount, proj.ChartTrajectory[0].Balance)
	for i, p := range proj.ChartTrajectory {
		assert.Equal(t, i, p.Year)
	}
	// Drift-only balances with positive contributions grow monotonically.
	for i := 1; i < len(proj.ChartTrajectory); i++ {
		assert.Greater(t, proj.ChartTrajectory[i].Balance, proj.ChartTrajectory[i-1].Balance)
	}
}

func TestSimulateGoal_PercentileOrdering(t *testing.T) {
	svc := newTestService(t, stochastic.NewSeededSource(42))

	req := &entities.GoalSimulationRequest{
		TargetAmount:        500_000,
		CurrentAmount:       50_000,
		MonthlyContribution: 2_000,
		TargetDate:          "2032-06-15",
	}

	proj, err := svc.SimulateGoal(context.Background(), req)
	require.NoError(t, err)

	assert.LessOrEqual(t, proj.PessimisticScenario, proj.MedianScenario)
	assert.LessOrEqual(t, proj.MedianScenario, proj.OptimisticScenario)
	assert.GreaterOrEqual(t, proj.SuccessProbability, 0.0)
	assert.LessOrEqual(t, proj.SuccessProbability, 100.0)
	assert.InDelta(t, proj.Gap, req.TargetAmount-proj.MedianScenario, 1e-9)
}

func TestSimulateGoal_Reproducible(t *testing.T) {
	req := &entities.GoalSimulationRequest{
		TargetAmount:        250_000,
		CurrentAmount:       10_000,
		MonthlyContribution: 500,
		TargetDate:          "2031-01-01",
	}

	a, err := newTestService(t, stochastic.NewSeededSource(7)).SimulateGoal(context.Background(), req)
	require.NoError(t, err)
	b, err := newTestService(t, stochastic.NewSeededSource(7)).SimulateGoal(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.SuccessProbability, b.SuccessProbability)
	assert.Equal(t, a.MedianScenario, b.MedianScenario)
	assert.Equal(t, a.ChartTrajectory, b.ChartTrajectory)
}

func TestSimulateGoal_PastDateClampsToMinimumHorizon(t *testing.T) {
	svc := newTestService(t, stochastic.NewFixed())

	req := &entities.GoalSimulationRequest{
		TargetAmount:        10_000,
		CurrentAmount:       1_000,
		MonthlyContribution: 100,
		TargetDate:          "2020-01-01",
	}

	proj, err := svc.SimulateGoal(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1.0, proj.HorizonYears)
	assert.Len(t, proj.ChartTrajectory, 2)
}

func TestSimulateGoal_InflationAdjustedTarget(t *testing.T) {
	svc := newTestService(t, stochastic.NewFixed())

	req := &entities.GoalSimulationRequest{
		TargetAmount:        100_000,
		CurrentAmount:       0,
		MonthlyContribution: 100,
		TargetDate:          "2030-01-01",
	}

	proj, err := svc.SimulateGoal(context.Background(), req)
	require.NoError(t, err)

	expected := 100_000 * math.Pow(1.06, proj.HorizonYears)
	assert.InDelta(t, expected, proj.InflationAdjustedTarget, 1e-6)
}

func TestSimulateGoal_RFC3339Date(t *testing.T) {
	svc := newTestService(t, stochastic.NewFixed())

	req := &entities.GoalSimulationRequest{
		TargetAmount:        100_000,
		MonthlyContribution: 100,
		TargetDate:          "2030-01-01T00:00:00Z",
	}

	proj, err := svc.SimulateGoal(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, proj.HorizonYears, 0.02)
}

func TestSimulateGoal_InvalidInput(t *testing.T) {
	svc := newTestService(t, stochastic.NewFixed())

	cases := []struct {
		name string
		req  entities.GoalSimulationRequest
	}{
		{"zero target", entities.GoalSimulationRequest{TargetAmount: 0, TargetDate: "2030-01-01"}},
		{"negative target", entities.GoalSimulationRequest{TargetAmount: -100, TargetDate: "2030-01-01"}},
		{"negative current", entities.GoalSimulationRequest{TargetAmount: 100, CurrentAmount: -1, TargetDate: "2030-01-01"}},
		{"negative contribution", entities.GoalSimulationRequest{TargetAmount: 100, MonthlyContribution: -1, TargetDate: "2030-01-01"}},
		{"missing date", entities.GoalSimulationRequest{TargetAmount: 100}},
		{"garbage date", entities.GoalSimulationRequest{TargetAmount: 100, TargetDate: "next summer"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SimulateGoal(context.Background(), &tc.req)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err))
		})
	}
}
