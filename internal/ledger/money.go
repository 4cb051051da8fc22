package ledger

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// winnings returns the profit on a winning bet at American odds.
func winnings(amount, odds float64) decimal.Decimal {
	a := decimal.NewFromFloat(amount)
	o := decimal.NewFromFloat(odds)
	if o.IsZero() {
		return decimal.Zero
	}
	if o.IsPositive() {
		return a.Mul(o).Div(hundred).Round(2)
	}
	return a.Div(o.Abs().Div(hundred)).Round(2)
}

// percent returns part/whole*100, or zero when whole is zero.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
