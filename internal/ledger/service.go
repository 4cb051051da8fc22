package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"totals-tracker/internal/logging"
)

var (
	// ErrReadOnly is returned for writes when the ledger is read-only.
	ErrReadOnly = errors.New("ledger is read-only")
	// ErrInvalidBet wraps validation failures.
	ErrInvalidBet = errors.New("invalid bet")
)

// Options tunes the Service.
type Options struct {
	ReadOnly bool
	Now      func() time.Time
	NewID    func() string
}

// Service records bets and computes ledger statistics.
type Service struct {
	store    Store
	logger   *slog.Logger
	readOnly bool
	now      func() time.Time
	newID    func() string

	// mu serializes read-modify-write sequences against the store.
	mu sync.Mutex
}

// NewService builds a ledger Service over store.
func NewService(store Store, logger *slog.Logger, opts Options) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.ReadOnly {
		logging.Info(logger, "bet ledger running in read-only mode")
	}
	return &Service{
		store:    store,
		logger:   logger,
		readOnly: opts.ReadOnly,
		now:      opts.Now,
		newID:    opts.NewID,
	}
}

// ReadOnly reports whether writes are rejected.
func (s *Service) ReadOnly() bool {
	return s.readOnly
}

// AddBet records a new pending bet.
func (s *Service) AddBet(ctx context.Context, in BetInput) (PlacedBet, error) {
	if s.readOnly {
		return PlacedBet{}, ErrReadOnly
	}
	betType, err := validateInput(in)
	if err != nil {
		return PlacedBet{}, err
	}

	bet := PlacedBet{
		ID:             s.newID(),
		GameID:         strings.TrimSpace(in.GameID),
		HomeTeam:       in.HomeTeam,
		AwayTeam:       in.AwayTeam,
		BetType:        betType,
		Line:           in.Line,
		ProjectedTotal: in.ProjectedTotal,
		Edge:           in.Edge,
		Odds:           in.Odds,
		Amount:         in.Amount,
		Payout:         money(in.Amount).Add(winnings(in.Amount, in.Odds)).InexactFloat64(),
		Status:         StatusPending,
		PlacedAt:       s.now().UTC(),
		Notes:          in.Notes,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, bet); err != nil {
		return PlacedBet{}, err
	}

	logging.Info(logging.FromContext(ctx, s.logger), "bet placed",
		logging.FieldBetID, bet.ID,
		logging.FieldGameID, bet.GameID,
		"teams", bet.AwayTeam+" @ "+bet.HomeTeam,
		"bet_type", bet.BetType,
		"line", bet.Line,
		"amount", bet.Amount,
	)
	return bet, nil
}

// UpdateBet applies a partial patch. It returns nil when the id is unknown.
func (s *Service) UpdateBet(ctx context.Context, id string, patch BetPatch) (*PlacedBet, error) {
	if s.readOnly {
		return nil, ErrReadOnly
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, id, patch)
}

func (s *Service) updateLocked(ctx context.Context, id string, patch BetPatch) (*PlacedBet, error) {
	bet, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	applyPatch(&bet, patch)
	if err := s.store.Save(ctx, bet); err != nil {
		return nil, err
	}

	logging.Info(logging.FromContext(ctx, s.logger), "bet updated",
		logging.FieldBetID, bet.ID,
		"status", bet.Status,
	)
	return &bet, nil
}

// Bets returns every bet in placement order.
func (s *Service) Bets(ctx context.Context) ([]PlacedBet, error) {
	return s.store.List(ctx)
}

// Bet returns a single bet.
func (s *Service) Bet(ctx context.Context, id string) (PlacedBet, bool, error) {
	return s.store.Get(ctx, id)
}

// BetsByGame returns the bets placed on a game.
func (s *Service) BetsByGame(ctx context.Context, gameID string) ([]PlacedBet, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]PlacedBet, 0)
	for _, b := range all {
		if b.GameID == gameID {
			result = append(result, b)
		}
	}
	return result, nil
}

// Stats aggregates the ledger. Net profit, win rate and the biggest win/loss
// only consider settled bets; wagers and payouts cover every bet.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	bets, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalBets: len(bets)}
	wagers, payout, net := decimal.Zero, decimal.Zero, decimal.Zero
	bigWin, bigLoss := decimal.Zero, decimal.Zero
	settled := 0
	for _, b := range bets {
		wagers = wagers.Add(money(b.Amount))
		payout = payout.Add(money(b.Payout))

		switch b.Status {
		case StatusWon:
			stats.WinCount++
		case StatusLost:
			stats.LossCount++
		case StatusPending:
			stats.PendingCount++
		}
		if !b.Status.settled() {
			continue
		}

		profit := decimal.Zero
		if b.NetProfit != nil {
			profit = money(*b.NetProfit)
		}
		if settled == 0 || profit.GreaterThan(bigWin) {
			bigWin = profit
		}
		if settled == 0 || profit.LessThan(bigLoss) {
			bigLoss = profit
		}
		net = net.Add(profit)
		settled++
	}

	stats.TotalWagers = wagers.InexactFloat64()
	stats.TotalPayout = payout.InexactFloat64()
	stats.NetProfit = net.InexactFloat64()
	stats.BiggestWin = bigWin.InexactFloat64()
	stats.BiggestLoss = bigLoss.InexactFloat64()
	stats.WinPercentage = percent(decimal.NewFromInt(int64(stats.WinCount)), decimal.NewFromInt(int64(settled))).InexactFloat64()
	stats.ROI = percent(net, wagers).InexactFloat64()
	if stats.TotalBets > 0 {
		stats.AverageBetSize = wagers.Div(decimal.NewFromInt(int64(stats.TotalBets))).Round(2).InexactFloat64()
	}
	return stats, nil
}

// AutoSettle settles pending bets on the completed games and returns how many
// were settled.
func (s *Service) AutoSettle(ctx context.Context, finals []FinalScore) (int, error) {
	if s.readOnly {
		return 0, ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bets, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	byGame := make(map[string]FinalScore, len(finals))
	for _, f := range finals {
		byGame[f.GameID] = f
	}

	settled := 0
	var errs []error
	for _, bet := range bets {
		if bet.Status != StatusPending {
			continue
		}
		final, ok := byGame[bet.GameID]
		if !ok {
			continue
		}
		if _, err := s.updateLocked(ctx, bet.ID, settlement(bet, final.Total(), s.now().UTC())); err != nil {
			errs = append(errs, fmt.Errorf("settle %s: %w", bet.ID, err))
			continue
		}
		settled++
	}

	if settled > 0 {
		logging.Info(logging.FromContext(ctx, s.logger), "bets auto-settled", logging.FieldCount, settled)
	}
	return settled, errors.Join(errs...)
}

// Won reports whether the bet wins at the final total. A push loses.
func Won(bet PlacedBet, finalTotal int) bool {
	total := float64(finalTotal)
	if bet.BetType == BetOver {
		return total > bet.Line
	}
	return total < bet.Line
}

func settlement(bet PlacedBet, finalTotal int, at time.Time) BetPatch {
	status := StatusLost
	payout := decimal.Zero
	profit := money(bet.Amount).Neg()
	if Won(bet, finalTotal) {
		status = StatusWon
		profit = winnings(bet.Amount, bet.Odds)
		payout = money(bet.Amount).Add(profit)
	}

	p := payout.InexactFloat64()
	n := profit.InexactFloat64()
	total := finalTotal
	return BetPatch{
		Status:      &status,
		Payout:      &p,
		NetProfit:   &n,
		ActualTotal: &total,
		SettledAt:   &at,
	}
}

func validateInput(in BetInput) (BetType, error) {
	if strings.TrimSpace(in.GameID) == "" {
		return "", fmt.Errorf("%w: gameId is required", ErrInvalidBet)
	}
	betType, ok := ParseBetType(in.BetType)
	if !ok {
		return "", fmt.Errorf("%w: betType must be OVER or UNDER", ErrInvalidBet)
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return "", fmt.Errorf("%w: betAmount must be positive", ErrInvalidBet)
	}
	if err := validateOdds(in.Odds); err != nil {
		return "", err
	}
	return betType, nil
}

func validatePatch(p BetPatch) error {
	if p.Status != nil && !p.Status.valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBet, *p.Status)
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return fmt.Errorf("%w: betAmount must be positive", ErrInvalidBet)
	}
	if p.Odds != nil {
		return validateOdds(*p.Odds)
	}
	return nil
}

func validateOdds(odds float64) error {
	if math.IsNaN(odds) || math.IsInf(odds, 0) || math.Abs(odds) < 100 {
		return fmt.Errorf("%w: odds must be American odds of at least +/-100", ErrInvalidBet)
	}
	return nil
}

func applyPatch(b *PlacedBet, p BetPatch) {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Line != nil {
		b.Line = *p.Line
	}
	if p.Odds != nil {
		b.Odds = *p.Odds
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Payout != nil {
		b.Payout = *p.Payout
	}
	if p.ActualTotal != nil {
		v := *p.ActualTotal
		b.ActualTotal = &v
	}
	if p.NetProfit != nil {
		v := *p.NetProfit
		b.NetProfit = &v
	}
	if p.SettledAt != nil {
		v := p.SettledAt.UTC()
		b.SettledAt = &v
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
}
