package analyzer

// Config holds the heuristics used to project totals and score confidence.
type Config struct {
	// ProjectionDivisor scales the current total into a projected final total.
	ProjectionDivisor float64
	// EdgeThreshold is the minimum |projected - line| that yields a recommendation.
	EdgeThreshold float64

	BaseConfidence   int
	EdgeBuckets      []EdgeBucket
	PaceMatchBonus   int
	PaceAverageBonus int
	// TimeBonus applies when more than TimeBonusAfterSeconds remain in the period.
	TimeBonus             int
	TimeBonusAfterSeconds int
	MaxConfidence         int

	QuarterSeconds int
	HighPace       float64
	LowPace        float64

	// Target window: period and clock within WindowSeconds ± WindowToleranceSeconds.
	WindowPeriod           int
	WindowSeconds          int
	WindowToleranceSeconds int
}

// EdgeBucket adds Bonus when the edge is at least MinEdge. Buckets are
// checked in order and only the first match applies.
type EdgeBucket struct {
	MinEdge float64
	Bonus   int
}

// DefaultConfig returns the standard heuristics.
func DefaultConfig() Config {
	return Config{
		ProjectionDivisor: 0.75,
		EdgeThreshold:     10,
		BaseConfidence:    60,
		EdgeBuckets: []EdgeBucket{
			{MinEdge: 15, Bonus: 15},
			{MinEdge: 12, Bonus: 10},
			{MinEdge: 10, Bonus: 5},
		},
		PaceMatchBonus:         10,
		PaceAverageBonus:       5,
		TimeBonus:              5,
		TimeBonusAfterSeconds:  6*60 + 30,
		MaxConfidence:          95,
		QuarterSeconds:         12 * 60,
		HighPace:               2.4,
		LowPace:                2.0,
		WindowPeriod:           3,
		WindowSeconds:          7 * 60,
		WindowToleranceSeconds: 30,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ProjectionDivisor <= 0 {
		c.ProjectionDivisor = def.ProjectionDivisor
	}
	if c.EdgeThreshold <= 0 {
		c.EdgeThreshold = def.EdgeThreshold
	}
	if c.BaseConfidence <= 0 {
		c.BaseConfidence = def.BaseConfidence
	}
	if c.EdgeBuckets == nil {
		c.EdgeBuckets = def.EdgeBuckets
	}
	if c.PaceMatchBonus <= 0 {
		c.PaceMatchBonus = def.PaceMatchBonus
	}
	if c.PaceAverageBonus <= 0 {
		c.PaceAverageBonus = def.PaceAverageBonus
	}
	if c.TimeBonus <= 0 {
		c.TimeBonus = def.TimeBonus
	}
	if c.TimeBonusAfterSeconds <= 0 {
		c.TimeBonusAfterSeconds = def.TimeBonusAfterSeconds
	}
	if c.MaxConfidence <= 0 {
		c.MaxConfidence = def.MaxConfidence
	}
	if c.QuarterSeconds <= 0 {
		c.QuarterSeconds = def.QuarterSeconds
	}
	if c.HighPace <= 0 {
		c.HighPace = def.HighPace
	}
	if c.LowPace <= 0 {
		c.LowPace = def.LowPace
	}
	if c.WindowPeriod <= 0 {
		c.WindowPeriod = def.WindowPeriod
	}
	if c.WindowSeconds <= 0 {
		c.WindowSeconds = def.WindowSeconds
	}
	if c.WindowToleranceSeconds <= 0 {
		c.WindowToleranceSeconds = def.WindowToleranceSeconds
	}
	return c
}
