package whatif

import (
	"errors"
	"math"
	"testing"

	"github.com/etnz/whatif/date"
)

func TestModel_MultiplierIdentity(t *testing.T) {
	m := DefaultModel()
	days := []string{"1970-01-01", "2023-12-31", "2024-01-01", "2025-04-26", "2030-06-15"}
	for _, s := range Scenarios() {
		for _, d := range days {
			day := date.MustParse(d)
			if got := m.Multiplier(s, day, day); math.Abs(got-1) > 1e-9 {
				t.Errorf("Multiplier(%s, %s, %s) = %v want 1", s, d, d, got)
			}
			if got := m.CompoundMultiplier(s, day, day); math.Abs(got-1) > 1e-9 {
				t.Errorf("CompoundMultiplier(%s, %s, %s) = %v want 1", s, d, d, got)
			}
		}
	}
}

func TestModel_MultiplierPositive(t *testing.T) {
	m := DefaultModel()
	start := date.New(2015, 1, 1)
	for _, s := range Scenarios() {
		for i := 0; i < 20*365; i += 17 {
			from := start.Add(i)
			for _, j := range []int{-400, -1, 1, 30, 365, 3650} {
				to := from.Add(j)
				for _, got := range []float64{m.Multiplier(s, from, to), m.CompoundMultiplier(s, from, to)} {
					if err := checkMultiplier(got); err != nil {
						t.Fatalf("multiplier(%s, %s, %s) = %v: %v", s, from, to, got, err)
					}
				}
			}
		}
	}
}

func TestModel_PriceIndex(t *testing.T) {
	m := DefaultModel()
	for _, s := range Scenarios() {
		if got := m.PriceIndex(s, m.Epoch); math.Abs(got-100) > 1e-9 {
			t.Errorf("PriceIndex(%s, epoch) = %v want 100", s, got)
		}
	}
	day := m.Epoch.Add(365 / 4)
	want := 100 * math.Exp(0.08*91/365) * (1 + 0.05*math.Sin(2*math.Pi*2*91/365))
	if got := m.PriceIndex(SP500, day); math.Abs(got-want) > 1e-9 {
		t.Errorf("PriceIndex(sp500, %s) = %v want %v", day, got, want)
	}
}

func TestModel_Compound(t *testing.T) {
	m := DefaultModel()
	from := date.New(2020, 1, 1)
	to := from.Add(1461) // four years of 365.25 days
	tests := []struct {
		s    Scenario
		want float64
	}{
		{SP500, math.Pow(1.08, 4)},
		{MSCI, math.Pow(1.07, 4)},
		{BTC, math.Pow(1.20, 4)},
	}
	for _, tt := range tests {
		if got := m.CompoundMultiplier(tt.s, from, to); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CompoundMultiplier(%s) = %v want %v", tt.s, got, tt.want)
		}
	}
	// Elapsed days are clamped: a reversed pair does not shrink.
	if got := m.CompoundMultiplier(SP500, to, from); got != 1 {
		t.Errorf("CompoundMultiplier(reversed) = %v want 1", got)
	}
	if got := Compound(0.08, 0); got != 1 {
		t.Errorf("Compound(0.08, 0) = %v want 1", got)
	}
}

func TestModel_Validate(t *testing.T) {
	if err := DefaultModel().Validate(); err != nil {
		t.Fatalf("DefaultModel().Validate() = %v", err)
	}
	tests := []struct {
		name string
		edit func(m *Model)
	}{
		{"amplitude 1", func(m *Model) { m.Params[BTC] = ModelParams{Drift: 0.5, Frequency: 4, Amplitude: 1} }},
		{"negative amplitude", func(m *Model) { m.Params[SP500] = ModelParams{Amplitude: -0.1} }},
		{"infinite drift", func(m *Model) { m.Params[MSCI] = ModelParams{Drift: math.Inf(1)} }},
		{"rate -100%", func(m *Model) { m.Params[MSCI] = ModelParams{Rate: -1} }},
		{"missing scenario", func(m *Model) { delete(m.Params, BTC) }},
	}
	for _, tt := range tests {
		m := DefaultModel()
		tt.edit(m)
		if err := m.Validate(); err == nil {
			t.Errorf("Validate(%s) = nil want an error", tt.name)
		}
	}
}

func TestCheckMultiplier(t *testing.T) {
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := checkMultiplier(v); !errors.Is(err, ErrComputation) {
			t.Errorf("checkMultiplier(%v) = %v want ErrComputation", v, err)
		}
	}
	if err := checkMultiplier(1.5); err != nil {
		t.Errorf("checkMultiplier(1.5) = %v want nil", err)
	}
}
