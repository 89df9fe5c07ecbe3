package whatif

import (
	"math"

	"github.com/etnz/whatif/date"
	"github.com/shopspring/decimal"
)

// Series is a cumulative portfolio value over ascending, distinct dates.
type Series struct {
	Dates  []date.Date `json:"dates"`
	Values []float64   `json:"values"`
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Dates) }

// Last returns the last point, or zero values for an empty series.
func (s Series) Last() (date.Date, float64) {
	if len(s.Dates) == 0 {
		return date.Date{}, 0
	}
	return s.Dates[len(s.Dates)-1], s.Values[len(s.Values)-1]
}

// Totals sums computed rows.
type Totals struct {
	Count int             `json:"count"`
	Spent decimal.Decimal `json:"spent"`
	Value decimal.Decimal `json:"what_if"`
}

// Gain returns Value - Spent.
func (t Totals) Gain() decimal.Decimal { return t.Value.Sub(t.Spent) }

// growthOrOne returns 1 for a growth factor that is not a positive finite number.
func growthOrOne(g float64) float64 {
	if !(g > 0) || math.IsInf(g, 0) {
		return 1
	}
	return g
}

// Compute returns one row per transaction, in list order, valued at asOf.
//
// The row multiplier already includes the growth factor. A growth factor
// that is not a positive number means 1.
func Compute(txs []Transaction, s Scenario, asOf date.Date, growth float64, mult MultiplierFunc) []ComputedRow {
	growth = growthOrOne(growth)
	rows := make([]ComputedRow, 0, len(txs))
	for _, tx := range txs {
		m := mult(s, tx.Date, asOf) * growth
		rows = append(rows, ComputedRow{
			Transaction: tx,
			Multiplier:  m,
			Value:       tx.Amount.Mul(decimal.NewFromFloat(m)),
		})
	}
	return rows
}

// Sum computes the totals of rows.
func Sum(rows []ComputedRow) Totals {
	t := Totals{Count: len(rows)}
	for _, r := range rows {
		t.Spent = t.Spent.Add(r.Amount)
		t.Value = t.Value.Add(r.Value)
	}
	return t
}

// Timeline builds the cumulative hypothetical value of txs over the distinct
// transaction dates and asOf.
//
// Each point t sums amount × mult(s, tx.Date, t) × growth over the
// transactions dated on or before t. It costs one multiplier per transaction
// and point, O(n·m), which is fine for a few hundred rows. Identical pairs of
// days are resolved once per call.
//
// An empty list yields the single point (asOf, 0).
func Timeline(txs []Transaction, s Scenario, asOf date.Date, growth float64, mult MultiplierFunc) Series {
	growth = growthOrOne(growth)
	days := make([]date.Date, 0, len(txs))
	for _, tx := range txs {
		days = append(days, tx.Date)
	}
	dates := date.Union(days, []date.Date{asOf})

	type pair struct{ from, to date.Date }
	memo := make(map[pair]float64)
	values := make([]float64, len(dates))
	for i, t := range dates {
		var sum float64
		for _, tx := range txs {
			if tx.Date.After(t) {
				continue
			}
			k := pair{tx.Date, t}
			m, ok := memo[k]
			if !ok {
				m = mult(s, tx.Date, t)
				memo[k] = m
			}
			sum += tx.Amount.InexactFloat64() * m * growth
		}
		values[i] = sum
	}
	return Series{Dates: dates, Values: values}
}
