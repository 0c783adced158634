package advisory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wealthlens/quant_service/internal/domain/entities"
)

const goalSystemPrompt = "Act as a senior wealth manager. Answer in strict JSON only."

const riskSystemPrompt = "You are the chief risk officer of a rigorous wealth management firm. Answer in strict JSON only."

func goalPrompt(req *entities.GoalSimulationRequest, p *entities.GoalProjection) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this client's %q goal.\n\n", req.Title)
	b.WriteString("Quantitative data:\n")
	fmt.Fprintf(&b, "- Goal type: %s\n", req.GoalType)
	fmt.Fprintf(&b, "- Time horizon: %.1f years\n", p.HorizonYears)
	fmt.Fprintf(&b, "- Success probability: %.1f%% (Monte Carlo)\n", p.SuccessProbability)
	fmt.Fprintf(&b, "- Current monthly contribution: %.0f\n", req.MonthlyContribution)
	fmt.Fprintf(&b, "- Required monthly contribution: %.0f\n", p.RequiredMonthly)
	fmt.Fprintf(&b, "- Projected gap vs median outcome: %.0f (%s)\n", p.Gap, gapLabel(p.Gap))
	fmt.Fprintf(&b, "- Inflation impact: target of %.0f will cost %.0f in future value\n",
		req.TargetAmount, p.InflationAdjustedTarget)

	b.WriteString("\nTask:\n")
	b.WriteString("1. Give a one-sentence verdict (e.g. \"On Track\", \"Critical Shortfall\").\n")
	b.WriteString("2. Provide 3 specific, math-backed recommendations.\n")
	b.WriteString("3. Be direct; if savings must increase, say exactly by how much.\n")
	b.WriteString("\nOutput JSON: {\"verdict\": string, \"recommendations\": [string, string, string], \"investment_strategy_suggestion\": string, \"tone\": string}\n")

	return b.String()
}

func gapLabel(gap float64) string {
	if gap < 0 {
		return "surplus"
	}
	return "deficit"
}

func riskPrompt(v *entities.PortfolioValuation, framing Framing) string {
	var b strings.Builder

	b.WriteString("Analyze this client portfolio using the computed quantitative metrics.\n\n")
	b.WriteString("Quantitative risk profile:\n")
	fmt.Fprintf(&b, "- Total NAV: %.2f\n", v.Metrics.TotalNAV)
	fmt.Fprintf(&b, "- Diversification score: %d/100 (HHI-based)\n", v.Metrics.DiversificationScore)
	fmt.Fprintf(&b, "- Portfolio volatility (annualized): %.1f%%\n", v.Metrics.PortfolioVolatility*100)
	fmt.Fprintf(&b, "- Sharpe ratio: %.2f (benchmark: >1.0 is efficient)\n", v.Metrics.SharpeRatio)
	fmt.Fprintf(&b, "- 95%% monthly VaR: %.2f\n", v.Metrics.ValueAtRisk95Monthly)
	if v.Metrics.LiquidityRatio != nil {
		fmt.Fprintf(&b, "- Liquidity ratio: %.1f%% (target: >80%%)\n", *v.Metrics.LiquidityRatio)
	}

	b.WriteString("\nAsset allocation:\n")
	allocation := make([]map[string]interface{}, 0, len(v.Assets))
	for _, a := range v.Assets {
		allocation = append(allocation, map[string]interface{}{
			"symbol": a.Symbol,
			"type":   a.Type,
			"value":  a.TotalValue,
			"vol":    a.Volatility,
		})
	}
	if raw, err := json.Marshal(allocation); err == nil {
		b.Write(raw)
		b.WriteString("\n")
	}

	if framing == FramingRebalance {
		b.WriteString("\nTask:\n")
		b.WriteString("1. A concise executive summary of portfolio health.\n")
		b.WriteString("2. Identify specific vulnerabilities (e.g. liquidity trap, correlation risk).\n")
		b.WriteString("3. Suggest 2 specific rebalancing actions to improve the Sharpe ratio.\n")
		b.WriteString("\nOutput JSON: {\"executive_summary\": string, \"risk_assessment\": \"Low\"|\"Moderate\"|\"High\"|\"Critical\", \"vulnerabilities\": [string], \"tactical_actions\": [string, string]}\n")
	} else {
		b.WriteString("\nTask:\n")
		b.WriteString("1. A two-sentence brutal assessment of the portfolio's efficiency.\n")
		b.WriteString("2. Identify 3 specific structural inefficiencies (e.g. cash drag, crypto over-exposure).\n")
		b.WriteString("3. Suggest a specific pair trade to improve the Sharpe ratio.\n")
		b.WriteString("\nOutput JSON: {\"executive_summary\": string, \"inefficiencies\": [string, string, string], \"rebalancing_strategy\": string, \"risk_grade\": \"A\"|\"B\"|\"C\"|\"D\"|\"F\"}\n")
	}

	return b.String()
}
