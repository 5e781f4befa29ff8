package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"optjournal/internal/journal"
	storemodel "optjournal/internal/store/model"
	"optjournal/internal/types"
)

type positionModel = storemodel.PositionModel
type journalEntryModel = storemodel.JournalEntryModel

// Store implements the journal persistence gateway using Gorm + SQLite.
type Store struct {
	db *gorm.DB
}

var _ journal.Store = (*Store)(nil)

// New opens (or creates) the journal database at path and migrates the
// schema.
func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: 数据库路径不能为空")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&positionModel{}, &journalEntryModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: allow a little parallelism for concurrent HTTP reads
	// while keeping lock contention low.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListPositions returns the full collection in display order (front
// first).
func (s *Store) ListPositions(ctx context.Context) ([]types.Position, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	var models []positionModel
	if err := s.db.WithContext(ctx).
		Order("display_order ASC, created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]types.Position, 0, len(models))
	for _, m := range models {
		out = append(out, positionModelToRecord(m))
	}
	return out, nil
}

// ReplacePositions rewrites the whole ordered collection in one
// transaction. The matcher hands back the full collection on every apply,
// so the write path is a wholesale swap rather than row-level diffing.
func (s *Store) ReplacePositions(ctx context.Context, positions []types.Position) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	now := time.Now()
	models := make([]positionModel, 0, len(positions))
	for i, p := range positions {
		m := newPositionModel(p, now)
		m.DisplayOrder = i
		models = append(models, m)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM positions").Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.Create(&models).Error
	})
}

// SavePosition upserts a single record. New records go to the front of the
// display order, existing ones keep their slot.
func (s *Store) SavePosition(ctx context.Context, pos types.Position) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	if strings.TrimSpace(pos.ID) == "" {
		return fmt.Errorf("position id 必填")
	}
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := newPositionModel(pos, now)
		var existing positionModel
		err := tx.Select("display_order", "created_at").Where("id = ?", pos.ID).First(&existing).Error
		switch {
		case err == nil:
			model.DisplayOrder = existing.DisplayOrder
			model.CreatedAtUnix = existing.CreatedAtUnix
		case errors.Is(err, gorm.ErrRecordNotFound):
			var minOrder *int
			if err := tx.Model(&positionModel{}).Select("MIN(display_order)").Scan(&minOrder).Error; err != nil {
				return err
			}
			if minOrder != nil {
				model.DisplayOrder = *minOrder - 1
			}
		default:
			return err
		}
		cols := []string{
			"ticker", "strategy", "exp_date", "side", "quantity", "entry_price", "entry_date",
			"status", "close_price", "close_date", "pnl", "notes", "display_order", "updated_at",
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).Create(&model).Error
	})
}

// DeletePosition removes a record unconditionally. Unknown identifiers
// yield gorm.ErrRecordNotFound.
func (s *Store) DeletePosition(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("position id 必填")
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&positionModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendJournalEntry records an applied instruction in the audit trail.
func (s *Store) AppendJournalEntry(ctx context.Context, entry journal.Entry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	payload, _ := json.Marshal(entry.Payload)
	model := journalEntryModel{
		Ticker:        strings.ToUpper(strings.TrimSpace(entry.Ticker)),
		Action:        string(entry.Action),
		Price:         entry.Price,
		Quantity:      entry.Quantity,
		TradeDate:     entry.TradeDate,
		Payload:       datatypes.JSON(payload),
		CreatedAtUnix: entry.CreatedAt.UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

// ListJournalEntries returns the latest audit rows, newest first.
func (s *Store) ListJournalEntries(ctx context.Context, limit int) ([]journal.Entry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var models []journalEntryModel
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]journal.Entry, 0, len(models))
	for _, m := range models {
		var payload types.TradeInstruction
		if len(m.Payload) > 0 {
			_ = json.Unmarshal(m.Payload, &payload)
		}
		out = append(out, journal.Entry{
			Ticker:    m.Ticker,
			Action:    types.Action(m.Action),
			Price:     m.Price,
			Quantity:  m.Quantity,
			TradeDate: m.TradeDate,
			Payload:   payload,
			CreatedAt: time.UnixMilli(m.CreatedAtUnix),
		})
	}
	return out, nil
}

// --------------------------- Model Helpers ------------------------------

func newPositionModel(p types.Position, now time.Time) positionModel {
	// Ticker keeps the user's casing; matching is case-insensitive in the
	// matcher, not here.
	return positionModel{
		ID:            strings.TrimSpace(p.ID),
		Ticker:        strings.TrimSpace(p.Ticker),
		Strategy:      p.Strategy,
		ExpDate:       strings.TrimSpace(p.ExpDate),
		Side:          string(p.Side),
		Quantity:      p.Quantity,
		EntryPrice:    p.EntryPrice,
		EntryDate:     strings.TrimSpace(p.EntryDate),
		Status:        string(p.Status),
		ClosePrice:    p.ClosePrice,
		CloseDate:     strings.TrimSpace(p.CloseDate),
		PnL:           p.PnL,
		Notes:         p.Notes,
		CreatedAtUnix: now.UnixMilli(),
		UpdatedAtUnix: now.UnixMilli(),
	}
}

func positionModelToRecord(m positionModel) types.Position {
	return types.Position{
		ID:         m.ID,
		Ticker:     m.Ticker,
		Strategy:   m.Strategy,
		ExpDate:    m.ExpDate,
		Side:       types.Side(m.Side),
		Quantity:   m.Quantity,
		EntryPrice: m.EntryPrice,
		EntryDate:  m.EntryDate,
		Status:     types.Status(m.Status),
		ClosePrice: m.ClosePrice,
		CloseDate:  m.CloseDate,
		PnL:        m.PnL,
		Notes:      m.Notes,
	}
}
