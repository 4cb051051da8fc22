package server

import (
	"fmt"
	"strings"

	"totals-tracker/internal/providers"
)

// normalizeProviderName returns a lower-cased provider name, deriving it from
// the instance type when not configured. Metrics and logs share this label.
func normalizeProviderName(raw string, provider providers.DataProvider) string {
	if raw != "" {
		return strings.ToLower(raw)
	}
	if provider != nil {
		return strings.ToLower(fmt.Sprintf("%T", provider))
	}
	return "provider"
}
