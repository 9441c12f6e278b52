package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places every stored amount keeps.
const MoneyScale = 2

// MaxMoney is the exclusive upper bound for any stored amount.
var MaxMoney = decimal.New(1, 16)

// validAmount reports why d cannot be stored, or "" when it can.
func validAmount(d decimal.Decimal) string {
	switch {
	case !d.Equal(d.Round(MoneyScale)):
		return "must have at most 2 decimal places"
	case d.Abs().GreaterThanOrEqual(MaxMoney):
		return "is too large"
	}
	return ""
}
