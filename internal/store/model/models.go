package model

import (
	"gorm.io/datatypes"
)

// PositionModel mirrors one journal position row. display_order holds the
// collection's insertion order; the front of the display is order 0.
type PositionModel struct {
	ID            string   `gorm:"column:id;primaryKey"`
	Ticker        string   `gorm:"column:ticker;index"`
	Strategy      string   `gorm:"column:strategy"`
	ExpDate       string   `gorm:"column:exp_date"`
	Side          string   `gorm:"column:side"`
	Quantity      int      `gorm:"column:quantity"`
	EntryPrice    float64  `gorm:"column:entry_price"`
	EntryDate     string   `gorm:"column:entry_date"`
	Status        string   `gorm:"column:status;index"`
	ClosePrice    *float64 `gorm:"column:close_price"`
	CloseDate     string   `gorm:"column:close_date"`
	PnL           float64  `gorm:"column:pnl"`
	Notes         string   `gorm:"column:notes"`
	DisplayOrder  int      `gorm:"column:display_order;index"`
	CreatedAtUnix int64    `gorm:"column:created_at"`
	UpdatedAtUnix int64    `gorm:"column:updated_at"`
}

func (PositionModel) TableName() string { return "positions" }

// JournalEntryModel is the append-only audit row for an applied
// instruction; payload keeps the instruction exactly as received.
type JournalEntryModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	Ticker        string         `gorm:"column:ticker;index"`
	Action        string         `gorm:"column:action"`
	Price         float64        `gorm:"column:price"`
	Quantity      int            `gorm:"column:quantity"`
	TradeDate     string         `gorm:"column:trade_date"`
	Payload       datatypes.JSON `gorm:"column:payload"`
	CreatedAtUnix int64          `gorm:"column:created_at;index"`
}

func (JournalEntryModel) TableName() string { return "journal_entries" }
