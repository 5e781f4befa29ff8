package journal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"optjournal/internal/logger"
	"optjournal/internal/types"
)

// Store is the persistence gateway. The engine treats the position set as
// an opaque ordered collection: it is loaded in full, reconciled in memory
// and written back in full.
type Store interface {
	ListPositions(ctx context.Context) ([]types.Position, error)
	ReplacePositions(ctx context.Context, positions []types.Position) error
	SavePosition(ctx context.Context, pos types.Position) error
	DeletePosition(ctx context.Context, id string) error
	AppendJournalEntry(ctx context.Context, entry Entry) error
}

// Entry is the audit record of one applied journal instruction.
type Entry struct {
	Ticker    string
	Action    types.Action
	Price     float64
	Quantity  int
	TradeDate string
	Payload   types.TradeInstruction
	CreatedAt time.Time
}

// Summary carries the dashboard header numbers.
type Summary struct {
	TotalRealizedProfit float64 `json:"totalRealizedProfit"`
	OpenPositions       int     `json:"openPositions"`
	UnrealizedPnL       float64 `json:"unrealizedPnl"`
	ExpiringSoon        int     `json:"expiringSoon"`
}

// Service ties the pure matcher and aggregator to the store. Reconciling
// which collection version wins is this layer's job, so LogTrade holds a
// lock across the load-apply-replace sequence; the core stays stateless.
type Service struct {
	store       Store
	matcher     Matcher
	warningDays int

	mu sync.Mutex
}

// NewService builds the journal service. warningDays bounds the
// expiring-soon summary count; values <= 0 default to 7.
func NewService(store Store, matcher Matcher, warningDays int) *Service {
	if warningDays <= 0 {
		warningDays = 7
	}
	return &Service{store: store, matcher: matcher, warningDays: warningDays}
}

// LogTrade validates the instruction, runs it through the matcher against
// the current collection and persists the result. Validation failures are
// returned as *types.ValidationError with the full field list.
func (s *Service) LogTrade(ctx context.Context, in types.TradeInstruction) ([]types.Position, error) {
	if fields := types.ValidateInstruction(in); len(fields) > 0 {
		return nil, &types.ValidationError{Fields: fields}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading positions failed: %w", err)
	}
	updated := s.matcher.Apply(in, positions)
	if err := s.store.ReplacePositions(ctx, updated); err != nil {
		return nil, fmt.Errorf("saving positions failed: %w", err)
	}
	if err := s.store.AppendJournalEntry(ctx, Entry{
		Ticker:    strings.ToUpper(strings.TrimSpace(in.Ticker)),
		Action:    in.Action,
		Price:     in.Price,
		Quantity:  in.Quantity,
		TradeDate: in.Date,
		Payload:   in,
		CreatedAt: time.Now(),
	}); err != nil {
		// Audit trail is best-effort; the reconciled collection is
		// already durable.
		logger.Warnf("[journal] audit append failed ticker=%s err=%v", in.Ticker, err)
	}
	logger.Infof("[journal] applied %s %s x%d @%.2f positions=%d", in.Action, strings.ToUpper(in.Ticker), in.Quantity, in.Price, len(updated))
	return updated, nil
}

// Positions returns the full ordered collection.
func (s *Service) Positions(ctx context.Context) ([]types.Position, error) {
	return s.store.ListPositions(ctx)
}

// SaveRecord upserts a raw position record, assigning an identifier when
// missing. It bypasses the matcher; the caller owns the record's
// consistency.
func (s *Service) SaveRecord(ctx context.Context, pos types.Position) (types.Position, error) {
	if strings.TrimSpace(pos.ID) == "" {
		pos.ID = NewID()
	}
	if err := s.store.SavePosition(ctx, pos); err != nil {
		return types.Position{}, fmt.Errorf("saving position %s failed: %w", pos.ID, err)
	}
	return pos, nil
}

// Delete removes a position unconditionally, open or closed.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeletePosition(ctx, id)
}

// Summary aggregates the header numbers. prices may be nil; unrealized
// P&L then stays 0.
func (s *Service) Summary(ctx context.Context, prices map[string]float64) (Summary, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return Summary{}, err
	}
	now := time.Now()
	expiring := 0
	for _, p := range positions {
		if p.Status == types.StatusOpen && ExpiringSoon(p.ExpDate, now, s.warningDays) {
			expiring++
		}
	}
	return Summary{
		TotalRealizedProfit: TotalRealizedProfit(positions),
		OpenPositions:       OpenPositionCount(positions),
		UnrealizedPnL:       UnrealizedPnL(positions, prices, s.matcher.Multiplier),
		ExpiringSoon:        expiring,
	}, nil
}

// PerformanceMetrics computes the closed-trade metrics over the stored
// collection.
func (s *Service) PerformanceMetrics(ctx context.Context) (Metrics, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return Metrics{}, err
	}
	return ComputeMetrics(positions), nil
}
