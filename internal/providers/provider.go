package providers

import (
	"context"
	"time"

	domaingames "totals-tracker/internal/domain/games"
)

// OddsQuery selects events and markets for an odds request.
type OddsQuery struct {
	Sport      string
	Regions    string
	Markets    string
	Bookmakers string
	OddsFormat string
	// CommenceFrom/CommenceTo bound the event start time when non-zero.
	CommenceFrom time.Time
	CommenceTo   time.Time
	// EventIDs narrows the request to specific events.
	EventIDs []string
}

// SportsProvider lists the leagues offered upstream. Listing is not billed.
type SportsProvider interface {
	ListSports(ctx context.Context) ([]domaingames.Sport, error)
}

// OddsProvider fetches games with bookmaker lines attached.
type OddsProvider interface {
	FetchOdds(ctx context.Context, q OddsQuery) ([]domaingames.Game, error)
}

// ScoresProvider fetches live and recently completed games with scores.
// Providers return ErrUnsupported when a league has no scores endpoint.
type ScoresProvider interface {
	FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error)
}

// DataProvider combines all provider capabilities.
type DataProvider interface {
	SportsProvider
	OddsProvider
	ScoresProvider
}
