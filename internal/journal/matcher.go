package journal

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"optjournal/internal/types"
)

// DefaultContractMultiplier 是标准期权合约乘数：报价按单股计，一张合约
// 对应 100 股。
const DefaultContractMultiplier = 100

// Matcher reconciles journal instructions against the ordered position
// collection. It is pure: Apply never mutates its input and performs no
// I/O, so a zero-value or configured Matcher is safe to share between
// callers. A zero Multiplier falls back to DefaultContractMultiplier.
type Matcher struct {
	Multiplier int
}

// Apply decides whether the instruction opens a new position, fully closes
// an existing one, or partially closes one, and returns the updated
// collection. Order is preserved; new positions and closed partial
// fragments are prepended.
//
// The instruction must already be validated; behavior on malformed input
// is undefined.
func (m Matcher) Apply(in types.TradeInstruction, positions []types.Position) []types.Position {
	if idx := m.matchIndex(in, positions); idx >= 0 {
		existing := positions[idx]
		offsetting := (existing.Side == types.SideLong && in.Action == types.ActionSell) ||
			(existing.Side == types.SideShort && in.Action == types.ActionBuy)
		if offsetting {
			return m.applyClose(in, positions, idx)
		}
		// Same-direction action against an open position deliberately
		// falls through and opens an independent lot, never averages in.
	}
	out := make([]types.Position, 0, len(positions)+1)
	out = append(out, m.newPosition(in))
	out = append(out, positions...)
	return out
}

// Apply runs the instruction through a Matcher with the default contract
// multiplier.
func Apply(in types.TradeInstruction, positions []types.Position) []types.Position {
	return Matcher{}.Apply(in, positions)
}

// matchIndex finds the first OPEN position sharing the instruction's key:
// ticker (case-insensitive), strategy (exact) and expiration date. Opening
// logic keeps at most one open position per key, so first match is the
// only match.
func (m Matcher) matchIndex(in types.TradeInstruction, positions []types.Position) int {
	for i, p := range positions {
		if p.Status != types.StatusOpen {
			continue
		}
		if strings.EqualFold(p.Ticker, in.Ticker) && p.Strategy == in.Strategy && p.ExpDate == in.ExpDate {
			return i
		}
	}
	return -1
}

func (m Matcher) applyClose(in types.TradeInstruction, positions []types.Position, idx int) []types.Position {
	existing := positions[idx]
	closeQty := in.Quantity
	if existing.Quantity < closeQty {
		closeQty = existing.Quantity
	}

	closePrice := in.Price
	closed := existing
	closed.Status = types.StatusClosed
	closed.Quantity = closeQty
	closed.ClosePrice = &closePrice
	closed.CloseDate = in.Date
	closed.PnL = m.realizedPnL(existing.Side, existing.EntryPrice, in.Price, closeQty)
	closed.Notes = joinNotes(existing.Notes, in.Notes)

	out := make([]types.Position, len(positions))
	copy(out, positions)

	if closeQty == existing.Quantity {
		out[idx] = closed
		return out
	}

	// Partial close: the original lot stays open with the remaining
	// quantity; the closed fragment gets a fresh identifier and goes to
	// the front.
	remaining := existing
	remaining.Quantity = existing.Quantity - closeQty
	out[idx] = remaining
	closed.ID = NewID()
	return append([]types.Position{closed}, out...)
}

func (m Matcher) newPosition(in types.TradeInstruction) types.Position {
	side := types.SideLong
	if in.Action == types.ActionSell {
		side = types.SideShort
	}
	return types.Position{
		ID:         NewID(),
		Ticker:     in.Ticker,
		Strategy:   in.Strategy,
		ExpDate:    in.ExpDate,
		Side:       side,
		Quantity:   in.Quantity,
		EntryPrice: in.Price,
		EntryDate:  in.Date,
		Status:     types.StatusOpen,
		PnL:        0,
		Notes:      in.Notes,
	}
}

// realizedPnL fixes the profit for the closed quantity. Per-unit diff is
// closePrice-entryPrice for LONG and entryPrice-closePrice for SHORT,
// scaled by quantity and the contract multiplier. Arithmetic goes through
// decimal so that e.g. 5.20-1.20 yields exactly 4.
func (m Matcher) realizedPnL(side types.Side, entryPrice, closePrice float64, qty int) float64 {
	entry := decimal.NewFromFloat(entryPrice)
	exit := decimal.NewFromFloat(closePrice)
	diff := exit.Sub(entry)
	if side == types.SideShort {
		diff = entry.Sub(exit)
	}
	pnl, _ := diff.Mul(decimal.NewFromInt(int64(qty))).Mul(m.multiplier()).Float64()
	return pnl
}

func (m Matcher) multiplier() decimal.Decimal {
	if m.Multiplier > 0 {
		return decimal.NewFromInt(int64(m.Multiplier))
	}
	return decimal.NewFromInt(DefaultContractMultiplier)
}

// joinNotes appends instruction notes to a closed position, newline-joined,
// preserving whatever was there.
func joinNotes(existing, extra string) string {
	if strings.TrimSpace(extra) == "" {
		return existing
	}
	if strings.TrimSpace(existing) == "" {
		return extra
	}
	return existing + "\n" + extra
}

// NewID returns a fresh opaque position identifier.
func NewID() string {
	return uuid.NewString()
}
