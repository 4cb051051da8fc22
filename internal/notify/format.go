package notify

import (
	"fmt"
	"strconv"
	"strings"

	"totals-tracker/internal/domain/opportunities"
)

const defaultBookLabel = "FanDuel"

// FormatAlert renders the chat message for an opportunity and its chosen
// recommendation.
func FormatAlert(opp opportunities.Opportunity, rec opportunities.Recommendation) string {
	book := defaultBookLabel
	if len(opp.Lines) > 0 && opp.Lines[0].Bookmaker != "" {
		book = opp.Lines[0].Bookmaker
	}

	price := strconv.FormatFloat(rec.Price, 'f', -1, 64)
	if rec.Price > 0 {
		price = "+" + price
	}

	var sb strings.Builder
	sb.WriteString("🏀 BASKETBALL BETTING ALERT 🎯\n\n")
	fmt.Fprintf(&sb, "📌 %s @ %s\n", opp.AwayTeam, opp.HomeTeam)
	fmt.Fprintf(&sb, "⏰ Q%d %s remaining\n\n", opp.Period, opp.TimeRemaining)
	fmt.Fprintf(&sb, "📊 Current Score: %d-%d (%d total)\n", opp.CurrentScore.Away, opp.CurrentScore.Home, opp.CurrentScore.Total)
	fmt.Fprintf(&sb, "🔢 Calculated Total: %.1f\n\n", opp.CalculatedTotal)
	sb.WriteString("💰 RECOMMENDATION:\n")
	fmt.Fprintf(&sb, "%s %s\n", rec.Action, strconv.FormatFloat(rec.Line, 'f', -1, 64))
	fmt.Fprintf(&sb, "Edge: +%.1f points\n", rec.Edge)
	fmt.Fprintf(&sb, "Confidence: %d%%\n", rec.Confidence)
	fmt.Fprintf(&sb, "Price: %s\n\n", price)
	sb.WriteString("📈 Analysis:\n")
	sb.WriteString(rec.Reasoning + "\n")
	fmt.Fprintf(&sb, "Scoring Pace: %s\n\n", strings.ToUpper(string(opp.Metadata.ScoringPace)))
	fmt.Fprintf(&sb, "🎲 Place this bet on %s!", book)
	return sb.String()
}
