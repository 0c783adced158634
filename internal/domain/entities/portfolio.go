package entities

// AssetType categorizes an asset for volatility and liquidity lookups.
// Unknown types are valid and fall back to a default volatility.
type AssetType string

const (
	AssetTypeCrypto       AssetType = "crypto"
	AssetTypeDefi         AssetType = "defi"
	AssetTypeStock        AssetType = "stock"
	AssetTypeRealEstate   AssetType = "real_estate"
	AssetTypeBond         AssetType = "bond"
	AssetTypeCash         AssetType = "cash"
	AssetTypeCollectibles AssetType = "collectibles"
)

const (
	LiquidityTierHigh = "High"
	LiquidityTierLow  = "Low (Illiquid)"
)

// Asset is a single portfolio holding as supplied by the caller.
// Value is the unit price.
type Asset struct {
	Symbol   string    `json:"symbol"`
	Type     AssetType `json:"type"`
	Quantity float64   `json:"quantity"`
	Value    float64   `json:"value"`
}

// ProcessedAsset is an asset after the one-step revaluation, annotated with
// its simulated current price and risk profile.
type ProcessedAsset struct {
	Asset
	CurrentPrice  float64 `json:"current_price"`
	TotalValue    float64 `json:"total_value"`
	Volatility    float64 `json:"volatility"`
	LiquidityTier string  `json:"liquidity_tier,omitempty"`
}

// RiskMetrics is the aggregate risk profile of a revalued portfolio.
// LiquidityRatio is only populated by the analyze entry point.
type RiskMetrics struct {
	TotalNAV             float64  `json:"total_nav"`
	PortfolioVolatility  float64  `json:"portfolio_volatility"`
	SharpeRatio          float64  `json:"sharpe_ratio"`
	ValueAtRisk95Monthly float64  `json:"var_95_monthly"`
	DiversificationScore int      `json:"diversification_score"`
	LiquidityRatio       *float64 `json:"liquidity_ratio,omitempty"`
}

// PortfolioValuation pairs the revalued assets with their aggregate metrics.
type PortfolioValuation struct {
	Assets  []ProcessedAsset `json:"assets"`
	Metrics RiskMetrics      `json:"metrics"`
}

// RiskInsight is the advisory narrative for a portfolio analysis. Field
// population differs between the analyze and rebalance framings; Placeholder
// is set when the collaborator was unavailable.
type RiskInsight struct {
	ExecutiveSummary    string   `json:"executive_summary"`
	RiskAssessment      string   `json:"risk_assessment,omitempty"`
	RiskGrade           string   `json:"risk_grade,omitempty"`
	Inefficiencies      []string `json:"inefficiencies,omitempty"`
	Vulnerabilities     []string `json:"vulnerabilities,omitempty"`
	RebalancingStrategy string   `json:"rebalancing_strategy,omitempty"`
	TacticalActions     []string `json:"tactical_actions,omitempty"`
	Placeholder         bool     `json:"placeholder,omitempty"`
}

// PortfolioAnalysisResponse is the payload for both portfolio endpoints.
type PortfolioAnalysisResponse struct {
	Metrics            RiskMetrics      `json:"metrics"`
	Assets             []ProcessedAsset `json:"assets"`
	RiskOfficerInsight *RiskInsight     `json:"risk_officer_insight,omitempty"`
}
