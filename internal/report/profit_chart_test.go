package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optjournal/internal/types"
)

func closedAt(id, closeDate string, pnl float64) types.Position {
	price := 1.0
	return types.Position{
		ID: id, Ticker: "AAPL", Strategy: "Call", ExpDate: "2024-12-20",
		Side: types.SideLong, Quantity: 1, EntryPrice: 1.0,
		Status: types.StatusClosed, ClosePrice: &price, CloseDate: closeDate, PnL: pnl,
	}
}

func TestBuildProfitPage_NoClosedTrades(t *testing.T) {
	_, err := BuildProfitPage([]types.Position{
		{ID: "open", Ticker: "AAPL", Status: types.StatusOpen, Quantity: 1},
	})
	assert.Error(t, err)
}

func TestBuildProfitPage_TwoCharts(t *testing.T) {
	page, err := BuildProfitPage([]types.Position{
		closedAt("b", "2024-02-01", -50),
		closedAt("a", "2024-01-01", 100),
	})
	require.NoError(t, err)
	assert.Len(t, page.Charts, 2)
}

func TestRenderProfitHTML(t *testing.T) {
	var buf bytes.Buffer
	err := RenderProfitHTML(&buf, []types.Position{closedAt("a", "2024-01-01", 100)})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Per-Trade")
	assert.Contains(t, html, "2024-01-01 AAPL")
}
