package gateway

import (
	"context"

	"totals-tracker/internal/logging"
)

// GetAllBasketballSports lists basketball league keys. The first successful
// discovery is memoized; concurrent callers share one upstream call. On
// failure the fallback list is returned and nothing is memoized.
func (g *Gateway) GetAllBasketballSports(ctx context.Context) []string {
	g.sportsMu.RLock()
	if len(g.sports) > 0 {
		out := append([]string(nil), g.sports...)
		g.sportsMu.RUnlock()
		return out
	}
	g.sportsMu.RUnlock()

	v, err, _ := g.sportsGroup.Do("sports", func() (any, error) {
		sports, err := g.provider.ListSports(ctx)
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(sports))
		for _, s := range sports {
			if s.Group == basketballGroup {
				keys = append(keys, s.Key)
			}
		}
		if len(keys) > 0 {
			g.sportsMu.Lock()
			g.sports = keys
			g.sportsMu.Unlock()
		}
		return keys, nil
	})
	if err != nil {
		logging.Error(logging.FromContext(ctx, g.logger), "sport discovery failed, using fallback list", err)
		return append([]string(nil), FallbackSports...)
	}

	keys := v.([]string)
	logging.Info(logging.FromContext(ctx, g.logger), "basketball leagues discovered", logging.FieldCount, len(keys))
	return append([]string(nil), keys...)
}
