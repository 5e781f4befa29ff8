package types

// Side 表示持仓方向。
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Status 表示持仓状态。
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Action 表示一笔日志指令的买卖方向。
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Position is a recorded option trade, open or closed. Dates are
// YYYY-MM-DD strings; JSON field names match the journal wire format.
type Position struct {
	ID         string   `json:"id"`
	Ticker     string   `json:"ticker"`
	Strategy   string   `json:"strategy"`
	ExpDate    string   `json:"expDate"`
	Side       Side     `json:"side"`
	Quantity   int      `json:"quantity"`
	EntryPrice float64  `json:"entryPrice"`
	EntryDate  string   `json:"entryDate"`
	Status     Status   `json:"status"`
	ClosePrice *float64 `json:"closePrice,omitempty"`
	CloseDate  string   `json:"closeDate,omitempty"`
	PnL        float64  `json:"pnl"`
	Notes      string   `json:"notes,omitempty"`
}

// IsClosed reports whether the position is fully closed. A position is
// CLOSED iff both close price and close date are present.
func (p Position) IsClosed() bool {
	return p.Status == StatusClosed && p.ClosePrice != nil && p.CloseDate != ""
}

// IsOpen reports whether the position is still held.
func (p Position) IsOpen() bool {
	return p.Status == StatusOpen
}

// TradeInstruction is a transient journal command. It is validated at the
// boundary and consumed by the matcher; it is never stored as-is.
type TradeInstruction struct {
	Ticker   string  `json:"ticker"`
	Strategy string  `json:"strategy"`
	ExpDate  string  `json:"expDate"`
	Action   Action  `json:"action"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Date     string  `json:"date"`
	Notes    string  `json:"notes,omitempty"`
}
