package theoddsapi

import "encoding/json"

type sportResponse struct {
	Key    string `json:"key"`
	Group  string `json:"group"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

type eventResponse struct {
	ID           string              `json:"id"`
	SportKey     string              `json:"sport_key"`
	SportTitle   string              `json:"sport_title"`
	CommenceTime string              `json:"commence_time"`
	HomeTeam     string              `json:"home_team"`
	AwayTeam     string              `json:"away_team"`
	Completed    bool                `json:"completed"`
	Scores       json.RawMessage     `json:"scores"`
	Bookmakers   []bookmakerResponse `json:"bookmakers"`
}

// liveScoreResponse is the per-game object shape carrying period and clock.
type liveScoreResponse struct {
	HomeScore     int    `json:"home_score"`
	AwayScore     int    `json:"away_score"`
	Period        int    `json:"period"`
	TimeRemaining string `json:"time_remaining"`
}

// teamScoreResponse is the list shape: one entry per team, score as a string.
type teamScoreResponse struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

type bookmakerResponse struct {
	Key     string           `json:"key"`
	Title   string           `json:"title"`
	Markets []marketResponse `json:"markets"`
}

type marketResponse struct {
	Key      string            `json:"key"`
	Outcomes []outcomeResponse `json:"outcomes"`
}

type outcomeResponse struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point"`
}
