package utils

import (
	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of fractional digits amounts are stored and rendered with.
const AmountPrecision = 2

// FormatAmount renders an amount with the ledger's fixed precision.
// Example: 1000 returns "1000.00", 12.3 returns "12.30"
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountPrecision)
}

// FitsAmountPrecision reports whether amount has no significant digits beyond
// AmountPrecision. Trailing zeros do not count, so 1.500 fits and 1.005 does not.
func FitsAmountPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(AmountPrecision))
}
