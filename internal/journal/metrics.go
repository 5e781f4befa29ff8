package journal

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"optjournal/internal/types"
)

// Metrics summarizes realized performance over the closed positions.
type Metrics struct {
	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
	WinRate       float64 `json:"winRate"`
	ProfitFactor  float64 `json:"profitFactor"`
	MaxDrawdown   float64 `json:"maxDrawdown"`
	AvgWin        float64 `json:"avgWin"`
	AvgLoss       float64 `json:"avgLoss"`
	GrossWin      float64 `json:"grossWin"`
	GrossLoss     float64 `json:"grossLoss"`
}

// MarshalJSON serializes an all-winning profit factor as the string "Inf";
// encoding/json rejects infinite floats.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias Metrics
	var pf any = m.ProfitFactor
	if math.IsInf(m.ProfitFactor, 1) {
		pf = "Inf"
	}
	return json.Marshal(struct {
		alias
		ProfitFactor any `json:"profitFactor"`
	}{alias(m), pf})
}

// TotalRealizedProfit sums pnl over all CLOSED positions. Collection order
// does not matter.
func TotalRealizedProfit(positions []types.Position) float64 {
	sum := decimal.Zero
	for _, p := range positions {
		if p.Status == types.StatusClosed {
			sum = sum.Add(decimal.NewFromFloat(p.PnL))
		}
	}
	f, _ := sum.Float64()
	return f
}

// OpenPositionCount counts positions still held.
func OpenPositionCount(positions []types.Position) int {
	n := 0
	for _, p := range positions {
		if p.Status == types.StatusOpen {
			n++
		}
	}
	return n
}

// ComputeMetrics walks the closed positions in close-date order, tracking a
// running cumulative total against its peak for max drawdown. Zero-P&L
// trades are classed as losses. With no closed trades every metric is 0;
// with wins and no losses the profit factor is +Inf.
func ComputeMetrics(positions []types.Position) Metrics {
	closed := make([]types.Position, 0, len(positions))
	for _, p := range positions {
		if p.Status == types.StatusClosed && p.CloseDate != "" {
			closed = append(closed, p)
		}
	}
	// Stable: equal close dates keep collection order.
	sort.SliceStable(closed, func(i, j int) bool {
		return CompareDates(closed[i].CloseDate, closed[j].CloseDate) < 0
	})

	var running, peak, maxDrawdown float64
	var grossWin, grossLoss float64
	winning, losing := 0, 0
	for _, trade := range closed {
		running += trade.PnL
		if running > peak {
			peak = running
		}
		if dd := peak - running; dd > maxDrawdown {
			maxDrawdown = dd
		}
		if trade.PnL > 0 {
			grossWin += trade.PnL
			winning++
		} else {
			grossLoss += math.Abs(trade.PnL)
			losing++
		}
	}

	m := Metrics{
		TotalTrades:   len(closed),
		WinningTrades: winning,
		LosingTrades:  losing,
		MaxDrawdown:   maxDrawdown,
		GrossWin:      grossWin,
		GrossLoss:     grossLoss,
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(winning) / float64(m.TotalTrades) * 100
	}
	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossWin / grossLoss
	case grossWin > 0:
		m.ProfitFactor = math.Inf(1)
	}
	if winning > 0 {
		m.AvgWin = grossWin / float64(winning)
	}
	if losing > 0 {
		m.AvgLoss = grossLoss / float64(losing)
	}
	return m
}

// UnrealizedPnL values the open positions against the supplied quotes
// (keyed by upper-case ticker). Positions without a quote are skipped. The
// contract multiplier is applied so open and realized P&L share a unit.
func UnrealizedPnL(positions []types.Position, prices map[string]float64, multiplier int) float64 {
	if multiplier <= 0 {
		multiplier = DefaultContractMultiplier
	}
	sum := decimal.Zero
	mult := decimal.NewFromInt(int64(multiplier))
	for _, p := range positions {
		if p.Status != types.StatusOpen {
			continue
		}
		current, ok := prices[strings.ToUpper(p.Ticker)]
		if !ok {
			continue
		}
		diff := decimal.NewFromFloat(current).Sub(decimal.NewFromFloat(p.EntryPrice))
		if p.Side == types.SideShort {
			diff = diff.Neg()
		}
		sum = sum.Add(diff.Mul(decimal.NewFromInt(int64(p.Quantity))).Mul(mult))
	}
	f, _ := sum.Float64()
	return f
}
