package whatif

import (
	"fmt"
	"math"

	"github.com/etnz/whatif/date"
)

// ModelParams are the constants of the deterministic price index of a scenario.
type ModelParams struct {
	Drift     float64 // annualized drift of the exponential trend
	Frequency float64 // oscillation cycles per year
	Amplitude float64 // relative amplitude of the oscillation, in [0, 1)
	Rate      float64 // annual rate of the compound fallback
}

// Model is the closed-form synthetic price model. It is the default when real
// data is disabled and the fallback when real data cannot be obtained.
//
// The oscillation only gives the curve a non monotonic look, its constants are
// not derived from market data.
type Model struct {
	Epoch  date.Date
	Params map[Scenario]ModelParams
}

const (
	// epsilon floors the index before a division.
	epsilon = 1e-6
	// daysPerYear is used by the oscillating model.
	daysPerYear = 365
	// compoundDaysPerYear is used by the compound fallback.
	compoundDaysPerYear = 365.25
)

// DefaultModel returns the model with its historical constants.
func DefaultModel() *Model {
	return &Model{
		Epoch: date.New(2024, 1, 1),
		Params: map[Scenario]ModelParams{
			SP500: {Drift: 0.08, Frequency: 2, Amplitude: 0.05, Rate: 0.08},
			MSCI:  {Drift: 0.07, Frequency: 2, Amplitude: 0.05, Rate: 0.07},
			BTC:   {Drift: 0.50, Frequency: 4, Amplitude: 0.20, Rate: 0.20},
		},
	}
}

// Validate checks that the index cannot become non positive.
func (m *Model) Validate() error {
	for _, s := range Scenarios() {
		p, ok := m.Params[s]
		if !ok {
			return fmt.Errorf("model has no parameters for scenario %s", s)
		}
		if p.Amplitude < 0 || p.Amplitude >= 1 || math.IsNaN(p.Amplitude) {
			return fmt.Errorf("scenario %s: amplitude %v out of [0, 1)", s, p.Amplitude)
		}
		if math.IsNaN(p.Drift) || math.IsInf(p.Drift, 0) || math.IsNaN(p.Frequency) || math.IsInf(p.Frequency, 0) {
			return fmt.Errorf("scenario %s: drift and frequency must be finite", s)
		}
		if p.Rate <= -1 || math.IsNaN(p.Rate) || math.IsInf(p.Rate, 0) {
			return fmt.Errorf("scenario %s: rate %v must be finite and above -100%%", s, p.Rate)
		}
	}
	return nil
}

// days returns the signed number of days from the epoch to d.
func (m *Model) days(d date.Date) float64 {
	if d.Before(m.Epoch) {
		return -float64(date.DaysBetween(d, m.Epoch))
	}
	return float64(date.DaysBetween(m.Epoch, d))
}

// PriceIndex returns the synthetic index of scenario s on day d.
func (m *Model) PriceIndex(s Scenario, d date.Date) float64 {
	p := m.Params[s]
	days := m.days(d)
	years := days / daysPerYear
	wobble := 1 + p.Amplitude*math.Sin(2*math.Pi*p.Frequency*days/daysPerYear)
	return 100 * math.Exp(p.Drift*years) * wobble
}

// Multiplier returns the growth of scenario s between two days according to the price index.
//
// Multiplier(s, d, d) is exactly 1.
func (m *Model) Multiplier(s Scenario, from, to date.Date) float64 {
	a := math.Max(epsilon, m.PriceIndex(s, from))
	b := math.Max(epsilon, m.PriceIndex(s, to))
	return b / a
}

// CompoundMultiplier returns (1 + rate)^years for the elapsed years between
// from and to. It never goes below 1 for a positive rate since elapsed days
// are clamped to zero.
func (m *Model) CompoundMultiplier(s Scenario, from, to date.Date) float64 {
	years := float64(date.DaysBetween(from, to)) / compoundDaysPerYear
	return Compound(m.Params[s].Rate, years)
}

// Compound returns (1 + rate)^years, years are clamped at 0.
func Compound(rate, years float64) float64 {
	return math.Pow(1+rate, math.Max(0, years))
}

// checkMultiplier returns ErrComputation for a non finite or non positive multiplier.
func checkMultiplier(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %v", ErrComputation, v)
	}
	return nil
}
