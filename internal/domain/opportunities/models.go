package opportunities

import (
	"time"

	domaingames "totals-tracker/internal/domain/games"
)

// Action is the side of a totals bet.
type Action string

const (
	ActionOver  Action = "OVER"
	ActionUnder Action = "UNDER"
)

// Pace classifies the scoring rate so far.
type Pace string

const (
	PaceHigh    Pace = "high"
	PaceAverage Pace = "average"
	PaceLow     Pace = "low"
)

// Score is the scoreboard at analysis time.
type Score struct {
	Home  int `json:"home"`
	Away  int `json:"away"`
	Total int `json:"total"`
}

// Recommendation is a single actionable side against one posted line.
type Recommendation struct {
	Action     Action  `json:"action"`
	Line       float64 `json:"line"`
	Edge       float64 `json:"edge"`
	Price      float64 `json:"price"`
	Confidence int     `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Metadata carries derived figures for the dashboard.
type Metadata struct {
	ScoringPace Pace      `json:"scoringPace"`
	Edge        float64   `json:"edge"`
	Timestamp   time.Time `json:"timestamp"`
}

// Opportunity is a game whose projected total diverges from the posted line.
type Opportunity struct {
	GameID          string                    `json:"gameId"`
	HomeTeam        string                    `json:"homeTeam"`
	AwayTeam        string                    `json:"awayTeam"`
	CurrentScore    Score                     `json:"currentScore"`
	CalculatedTotal float64                   `json:"calculatedTotal"`
	TimeRemaining   string                    `json:"timeRemaining"`
	Period          int                       `json:"period"`
	Lines           []domaingames.BettingLine `json:"lines"`
	Recommendations []Recommendation          `json:"recommendations"`
	Confidence      float64                   `json:"confidence"`
	Metadata        Metadata                  `json:"metadata"`
}

// Best returns the highest-confidence recommendation; ties keep the first.
func (o Opportunity) Best() (Recommendation, bool) {
	if len(o.Recommendations) == 0 {
		return Recommendation{}, false
	}
	best := o.Recommendations[0]
	for _, r := range o.Recommendations[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	return best, true
}
