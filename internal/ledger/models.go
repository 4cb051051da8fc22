package ledger

import (
	"strings"
	"time"
)

// BetType is the side of a totals bet.
type BetType string

const (
	BetOver  BetType = "OVER"
	BetUnder BetType = "UNDER"
)

// ParseBetType accepts either case.
func ParseBetType(v string) (BetType, bool) {
	switch BetType(strings.ToUpper(strings.TrimSpace(v))) {
	case BetOver:
		return BetOver, true
	case BetUnder:
		return BetUnder, true
	default:
		return "", false
	}
}

// Status is the lifecycle state of a placed bet.
type Status string

const (
	StatusPending   Status = "pending"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusCancelled Status = "cancelled"
)

func (s Status) valid() bool {
	switch s {
	case StatusPending, StatusWon, StatusLost, StatusCancelled:
		return true
	}
	return false
}

func (s Status) settled() bool {
	return s == StatusWon || s == StatusLost
}

// PlacedBet is a bet a user placed elsewhere and records here.
type PlacedBet struct {
	ID             string     `json:"id"`
	GameID         string     `json:"gameId"`
	HomeTeam       string     `json:"homeTeam"`
	AwayTeam       string     `json:"awayTeam"`
	BetType        BetType    `json:"betType"`
	Line           float64    `json:"line"`
	ProjectedTotal float64    `json:"projectedTotal,omitempty"`
	Edge           float64    `json:"edge,omitempty"`
	Odds           float64    `json:"odds"`
	Amount         float64    `json:"betAmount"`
	Payout         float64    `json:"potentialPayout"`
	Status         Status     `json:"status"`
	PlacedAt       time.Time  `json:"placedAt"`
	SettledAt      *time.Time `json:"settledAt,omitempty"`
	ActualTotal    *int       `json:"actualTotal,omitempty"`
	NetProfit      *float64   `json:"netProfit,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

// BetInput is the user-supplied part of a new bet.
type BetInput struct {
	GameID         string  `json:"gameId"`
	HomeTeam       string  `json:"homeTeam"`
	AwayTeam       string  `json:"awayTeam"`
	BetType        string  `json:"betType"`
	Line           float64 `json:"line"`
	ProjectedTotal float64 `json:"projectedTotal"`
	Edge           float64 `json:"edge"`
	Odds           float64 `json:"odds"`
	Amount         float64 `json:"betAmount"`
	Notes          string  `json:"notes"`
}

// BetPatch is a partial update; nil fields are left unchanged.
type BetPatch struct {
	Status      *Status    `json:"status,omitempty"`
	Line        *float64   `json:"line,omitempty"`
	Odds        *float64   `json:"odds,omitempty"`
	Amount      *float64   `json:"betAmount,omitempty"`
	Payout      *float64   `json:"potentialPayout,omitempty"`
	ActualTotal *int       `json:"actualTotal,omitempty"`
	NetProfit   *float64   `json:"netProfit,omitempty"`
	SettledAt   *time.Time `json:"settledAt,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// FinalScore is a completed game's result used for settlement.
type FinalScore struct {
	GameID string `json:"gameId"`
	Home   int    `json:"home"`
	Away   int    `json:"away"`
}

// Total returns the combined final score.
func (f FinalScore) Total() int {
	return f.Home + f.Away
}

// Stats aggregates the ledger.
type Stats struct {
	TotalBets      int     `json:"totalBets"`
	TotalWagers    float64 `json:"totalWagers"`
	TotalPayout    float64 `json:"totalPayout"`
	NetProfit      float64 `json:"netProfit"`
	WinCount       int     `json:"winCount"`
	LossCount      int     `json:"lossCount"`
	PendingCount   int     `json:"pendingCount"`
	WinPercentage  float64 `json:"winPercentage"`
	AverageBetSize float64 `json:"averageBetSize"`
	BiggestWin     float64 `json:"biggestWin"`
	BiggestLoss    float64 `json:"biggestLoss"`
	ROI            float64 `json:"roi"`
}
