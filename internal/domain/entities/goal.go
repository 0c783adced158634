package entities

// GoalSimulationRequest is the input record for a savings-goal projection.
// TargetDate accepts either a plain date (2006-01-02) or RFC 3339.
type GoalSimulationRequest struct {
	Title               string  `json:"title"`
	TargetAmount        float64 `json:"target_amount"`
	CurrentAmount       float64 `json:"current_amount"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	TargetDate          string  `json:"target_date"`
	GoalType            string  `json:"goal_type"`
}

// ChartPoint is a yearly balance snapshot of the sampled trajectory.
type ChartPoint struct {
	Year    int     `json:"year"`
	Balance float64 `json:"balance"`
}

// GoalProjection is the full simulation outcome. Scenario values are
// nearest-rank order statistics of the same sorted outcome array, so
// Pessimistic <= Median <= Optimistic by construction.
type GoalProjection struct {
	SuccessProbability      float64      `json:"success_probability"`
	OptimisticScenario      float64      `json:"optimistic_scenario"`
	MedianScenario          float64      `json:"median_scenario"`
	PessimisticScenario     float64      `json:"pessimistic_scenario"`
	RequiredMonthly         float64      `json:"required_monthly"`
	InflationAdjustedTarget float64      `json:"inflation_adjusted_target"`
	Gap                     float64      `json:"gap"`
	HorizonYears            float64      `json:"horizon_years"`
	ChartTrajectory         []ChartPoint `json:"chart_trajectory"`
}

// GoalMetrics is the wire-level metrics block for the simulate-goal endpoint.
type GoalMetrics struct {
	SuccessProbability      int     `json:"success_probability"`
	ProjectedValue          float64 `json:"projected_value"`
	WorstCaseValue          float64 `json:"worst_case_value"`
	RequiredMonthlySavings  float64 `json:"required_monthly_savings"`
	InflationAdjustedTarget float64 `json:"inflation_adjusted_target"`
	GapValue                float64 `json:"gap_value"`
}

// GoalInsight is the advisory narrative for a goal analysis. Placeholder is
// set when the text-generation collaborator was unavailable and a default
// narrative was substituted.
type GoalInsight struct {
	Verdict                      string   `json:"verdict"`
	Recommendations              []string `json:"recommendations"`
	InvestmentStrategySuggestion string   `json:"investment_strategy_suggestion"`
	Tone                         string   `json:"tone,omitempty"`
	Placeholder                  bool     `json:"placeholder,omitempty"`
}

// GoalAnalysisResponse is the simulate-goal endpoint payload.
type GoalAnalysisResponse struct {
	Metrics    GoalMetrics  `json:"metrics"`
	ChartData  []ChartPoint `json:"chart_data"`
	AIAnalysis *GoalInsight `json:"ai_analysis,omitempty"`
}
