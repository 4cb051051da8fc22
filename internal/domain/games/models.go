package games

import "time"

// Market and outcome keys used by the totals pipeline.
const (
	MarketTotals = "totals"
	OutcomeOver  = "Over"
	OutcomeUnder = "Under"
)

// Sport describes a league offered by the upstream provider.
type Sport struct {
	Key    string `json:"key"`
	Group  string `json:"group"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// Scores is the live scoring state of a game. A nil *Scores means the game
// has no score data yet.
type Scores struct {
	Home          int    `json:"homeScore"`
	Away          int    `json:"awayScore"`
	Period        int    `json:"period"`
	TimeRemaining string `json:"timeRemaining,omitempty"`
}

// Total returns the combined score.
func (s Scores) Total() int {
	return s.Home + s.Away
}

// Outcome is one side of a market.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// Market groups outcomes for a market key such as "totals".
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Bookmaker holds the markets a sportsbook has posted for a game.
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Game is the canonical live snapshot of a game, with the sportsbook lines
// attached at fetch time.
type Game struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sportKey"`
	SportTitle   string      `json:"sportTitle,omitempty"`
	CommenceTime time.Time   `json:"commenceTime"`
	HomeTeam     string      `json:"homeTeam"`
	AwayTeam     string      `json:"awayTeam"`
	Completed    bool        `json:"completed"`
	Scores       *Scores     `json:"scores,omitempty"`
	Bookmakers   []Bookmaker `json:"bookmakers,omitempty"`
}

// HasScores reports whether the snapshot carries live score data.
func (g Game) HasScores() bool {
	return g.Scores != nil
}

// Matchup renders "Away @ Home".
func (g Game) Matchup() string {
	return g.AwayTeam + " @ " + g.HomeTeam
}

// Bookmaker returns the bookmaker with the given key.
func (g Game) Bookmaker(key string) (Bookmaker, bool) {
	for _, b := range g.Bookmakers {
		if b.Key == key {
			return b, true
		}
	}
	return Bookmaker{}, false
}

// HasBookmaker reports whether the given sportsbook posted anything for the game.
func (g Game) HasBookmaker(key string) bool {
	_, ok := g.Bookmaker(key)
	return ok
}

// Market returns the market with the given key.
func (b Bookmaker) Market(key string) (Market, bool) {
	for _, m := range b.Markets {
		if m.Key == key {
			return m, true
		}
	}
	return Market{}, false
}

// Outcome returns the outcome with the given name.
func (m Market) Outcome(name string) (Outcome, bool) {
	for _, o := range m.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// BettingLine is a posted total with prices for both sides.
type BettingLine struct {
	Bookmaker  string  `json:"bookmaker"`
	Total      float64 `json:"total"`
	OverPrice  float64 `json:"overPrice"`
	UnderPrice float64 `json:"underPrice"`
}

// ScheduledGame is an entry of today's schedule.
type ScheduledGame struct {
	GameID    string    `json:"gameId"`
	StartTime time.Time `json:"startTime"`
	Teams     string    `json:"teams"`
	League    string    `json:"sport"`
	SportKey  string    `json:"sportKey"`
}
