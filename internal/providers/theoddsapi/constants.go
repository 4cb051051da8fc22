package theoddsapi

import "time"

const (
	providerName       = "theoddsapi"
	defaultBaseURL     = "https://api.the-odds-api.com/v4"
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBody       = 512

	headerRequestsRemaining = "x-requests-remaining"
	headerRetryAfter        = "Retry-After"
)
