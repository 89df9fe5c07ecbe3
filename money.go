package whatif

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the reporting currency.
const DefaultCurrency = "EUR"

// Money is an amount in a currency, for display.
type Money struct {
	value decimal.Decimal // major unit
	cur   string
}

// M returns a Money value. An empty currency means DefaultCurrency.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	var d decimal.Decimal
	switch v := any(value).(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case decimal.Decimal:
		d = v
	}
	return Money{value: d, cur: currency}
}

// currency never returns nil, unknown codes get go-money's default formatting.
func (m Money) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// String formats the amount with the currency grapheme and separators,
// rounded to the currency fraction.
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Sub returns m minus n, in the currency of m.
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: m.cur} }
