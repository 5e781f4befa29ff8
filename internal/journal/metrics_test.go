package journal

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optjournal/internal/types"
)

func closedTrade(id, closeDate string, pnl float64) types.Position {
	price := 1.0
	return types.Position{
		ID: id, Ticker: "AAPL", Strategy: "Call", ExpDate: "2024-12-20",
		Side: types.SideLong, Quantity: 1, EntryPrice: 1.0, EntryDate: "2024-01-01",
		Status: types.StatusClosed, ClosePrice: &price, CloseDate: closeDate, PnL: pnl,
	}
}

func TestTotalRealizedProfit_OrderIndependent(t *testing.T) {
	open := types.Position{ID: "o", Status: types.StatusOpen, Quantity: 1}
	a := closedTrade("a", "2024-02-01", 150)
	b := closedTrade("b", "2024-03-01", -50)
	c := closedTrade("c", "2024-01-01", 25)

	assert.Equal(t, 125.0, TotalRealizedProfit([]types.Position{open, a, b, c}))
	assert.Equal(t, 125.0, TotalRealizedProfit([]types.Position{c, b, open, a}))
}

func TestOpenPositionCount(t *testing.T) {
	positions := []types.Position{
		{ID: "1", Status: types.StatusOpen},
		closedTrade("2", "2024-02-01", 10),
		{ID: "3", Status: types.StatusOpen},
	}
	assert.Equal(t, 2, OpenPositionCount(positions))
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil)
	assert.Zero(t, m.TotalTrades)
	assert.Zero(t, m.WinRate)
	assert.Zero(t, m.ProfitFactor)
	assert.Zero(t, m.MaxDrawdown)
}

func TestComputeMetrics_MixedTrades(t *testing.T) {
	// Close-date order: +300, -100, -200, +400.
	positions := []types.Position{
		closedTrade("d", "2024-04-01", 400),
		closedTrade("b", "2024-02-01", -100),
		closedTrade("a", "2024-01-01", 300),
		closedTrade("c", "2024-03-01", -200),
		{ID: "open", Status: types.StatusOpen, Quantity: 1},
	}
	m := ComputeMetrics(positions)

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.Equal(t, 50.0, m.WinRate)
	assert.Equal(t, 700.0, m.GrossWin)
	assert.Equal(t, 300.0, m.GrossLoss)
	assert.InDelta(t, 700.0/300.0, m.ProfitFactor, 1e-9)
	// Peak 300 after the first close, trough 0 after the third.
	assert.Equal(t, 300.0, m.MaxDrawdown)
	assert.Equal(t, 350.0, m.AvgWin)
	assert.Equal(t, 150.0, m.AvgLoss)
}

func TestComputeMetrics_ZeroPnLCountsAsLoss(t *testing.T) {
	m := ComputeMetrics([]types.Position{
		closedTrade("a", "2024-01-01", 100),
		closedTrade("b", "2024-02-01", 0),
	})
	assert.Equal(t, 1, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.Equal(t, 50.0, m.WinRate)
	// Zero loss sum still means no denominator: all profit, no giveback.
	assert.True(t, math.IsInf(m.ProfitFactor, 1))
	assert.Zero(t, m.AvgLoss)
}

func TestComputeMetrics_AllWinningIsInfiniteProfitFactor(t *testing.T) {
	m := ComputeMetrics([]types.Position{
		closedTrade("a", "2024-01-01", 100),
		closedTrade("b", "2024-02-01", 200),
	})
	assert.True(t, math.IsInf(m.ProfitFactor, 1))
	assert.Equal(t, 100.0, m.WinRate)
	assert.Zero(t, m.MaxDrawdown)
}

func TestComputeMetrics_DrawdownMonotonicOverPrefixes(t *testing.T) {
	trades := []types.Position{
		closedTrade("a", "2024-01-01", 500),
		closedTrade("b", "2024-01-02", -200),
		closedTrade("c", "2024-01-03", 100),
		closedTrade("d", "2024-01-04", -600),
		closedTrade("e", "2024-01-05", 900),
	}
	prev := 0.0
	for i := 1; i <= len(trades); i++ {
		m := ComputeMetrics(trades[:i])
		require.GreaterOrEqual(t, m.MaxDrawdown, 0.0)
		require.GreaterOrEqual(t, m.MaxDrawdown, prev, "drawdown must not shrink as the prefix grows")
		prev = m.MaxDrawdown
	}
	// Peak 500 after the first close, trough -200 after the fourth.
	assert.Equal(t, 700.0, prev)
}

func TestComputeMetrics_StableTieBreakOnEqualCloseDates(t *testing.T) {
	// Same close date: collection order decides, so the -300 applies
	// after the +100 and the drawdown sees the full dip.
	m := ComputeMetrics([]types.Position{
		closedTrade("a", "2024-01-02", 100),
		closedTrade("b", "2024-01-02", -300),
		closedTrade("c", "2024-01-01", 50),
	})
	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 300.0, m.MaxDrawdown)
}

func TestMetricsJSON_InfiniteProfitFactor(t *testing.T) {
	m := ComputeMetrics([]types.Position{closedTrade("a", "2024-01-01", 100)})
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"profitFactor":"Inf"`)

	finite := ComputeMetrics([]types.Position{
		closedTrade("a", "2024-01-01", 100),
		closedTrade("b", "2024-01-02", -50),
	})
	data, err = json.Marshal(finite)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"profitFactor":2`)
}

func TestUnrealizedPnL(t *testing.T) {
	positions := []types.Position{
		{ID: "l", Ticker: "aapl", Status: types.StatusOpen, Side: types.SideLong, Quantity: 2, EntryPrice: 1.00},
		{ID: "s", Ticker: "TSLA", Status: types.StatusOpen, Side: types.SideShort, Quantity: 1, EntryPrice: 5.00},
		closedTrade("c", "2024-01-01", 999),
		{ID: "noquote", Ticker: "MSFT", Status: types.StatusOpen, Side: types.SideLong, Quantity: 3, EntryPrice: 2.00},
	}
	prices := map[string]float64{"AAPL": 1.50, "TSLA": 4.00}

	// LONG: (1.50-1.00)*2*100 = 100; SHORT: (5.00-4.00)*1*100 = 100.
	assert.Equal(t, 200.0, UnrealizedPnL(positions, prices, 0))
	assert.Equal(t, 2.0, UnrealizedPnL(positions, prices, 1))
	assert.Zero(t, UnrealizedPnL(positions, nil, 0))
}
