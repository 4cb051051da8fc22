package theoddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/providers"
	"totals-tracker/internal/timeutil"
)

// Config controls how the client reaches The Odds API.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client fetches sports, odds and scores from The Odds API v4 and maps them
// to domain models.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	logger     *slog.Logger
	now        func() time.Time
}

var _ providers.DataProvider = (*Client)(nil)

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// ListSports returns every sport the upstream knows about, in season or not.
func (c *Client) ListSports(ctx context.Context) ([]domaingames.Sport, error) {
	q := url.Values{}
	q.Set("all", "true")

	var payload []sportResponse
	if err := c.get(ctx, "sports", "/sports", q, &payload); err != nil {
		return nil, err
	}

	sports := make([]domaingames.Sport, 0, len(payload))
	for _, s := range payload {
		sports = append(sports, mapSport(s))
	}
	return sports, nil
}

// FetchOdds returns events for a sport with the requested markets attached.
func (c *Client) FetchOdds(ctx context.Context, oq providers.OddsQuery) ([]domaingames.Game, error) {
	if oq.Sport == "" {
		return nil, fmt.Errorf("%s: sport is required", providerName)
	}
	q := url.Values{}
	setIfNotEmpty(q, "regions", oq.Regions)
	setIfNotEmpty(q, "markets", oq.Markets)
	setIfNotEmpty(q, "bookmakers", oq.Bookmakers)
	setIfNotEmpty(q, "oddsFormat", oq.OddsFormat)
	if !oq.CommenceFrom.IsZero() {
		q.Set("commenceTimeFrom", timeutil.FormatUpstream(oq.CommenceFrom))
	}
	if !oq.CommenceTo.IsZero() {
		q.Set("commenceTimeTo", timeutil.FormatUpstream(oq.CommenceTo))
	}
	if len(oq.EventIDs) > 0 {
		q.Set("eventIds", strings.Join(oq.EventIDs, ","))
	}

	return c.fetchEvents(ctx, "odds", "/sports/"+url.PathEscape(oq.Sport)+"/odds", q)
}

// FetchScores returns live and recently completed events for a sport.
// Leagues without a scores feed yield providers.ErrUnsupported.
func (c *Client) FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error) {
	if sport == "" {
		return nil, fmt.Errorf("%s: sport is required", providerName)
	}
	return c.fetchEvents(ctx, "scores", "/sports/"+url.PathEscape(sport)+"/scores", url.Values{})
}

func (c *Client) fetchEvents(ctx context.Context, endpoint, path string, q url.Values) ([]domaingames.Game, error) {
	var payload []eventResponse
	if err := c.get(ctx, endpoint, path, q, &payload); err != nil {
		return nil, err
	}
	games := make([]domaingames.Game, 0, len(payload))
	for _, e := range payload {
		games = append(games, mapEvent(e))
	}
	return games, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values, dest any) error {
	if c.apiKey != "" {
		q.Set("apiKey", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	remaining := resp.Header.Get(headerRequestsRemaining)
	if remaining != "" {
		logging.Debug(logging.FromContext(ctx, c.logger), "odds api quota",
			logging.FieldProvider, providerName,
			"endpoint", endpoint,
			"requests_remaining", remaining,
		)
	}

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s %s %s: %w", providerName, endpoint, path, providers.ErrUnsupported)
	case resp.StatusCode == http.StatusTooManyRequests:
		return &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get(headerRetryAfter), c.now()),
			Remaining:  remaining,
			Message:    providerName + " rate limited",
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &providers.StatusError{
			Provider:   providerName,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%s %s: decode: %w", providerName, endpoint, err)
	}
	return nil
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
