package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/date"
	"github.com/etnz/whatif/renderer"
)

// valuationFlags are the flags of the commands that value the session.
// Scenario and as-of date override the session ones without saving them.
type valuationFlags struct {
	scenario    string
	asOf        string
	growth      float64
	oscillating bool
}

func (v *valuationFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&v.scenario, "scenario", "", "Scenario to value with (sp500, msci, btc), defaults to the session one")
	f.StringVar(&v.asOf, "asof", "", "Valuation date YYYY-MM-DD, defaults to the session one")
	f.Float64Var(&v.growth, "growth", 1, "Growth factor applied to every value, as in 'what if it did 50% better' with 1.5")
	f.BoolVar(&v.oscillating, "oscillating", false, "Use the oscillating index model instead of the compound rates when real data is off or missing")
}

// valued is a session valued under the flags.
type valued struct {
	session   *whatif.Session
	valuation renderer.Valuation
	mult      whatif.MultiplierFunc
}

// value applies the flags to the session loaded by a.
func (v *valuationFlags) value(ctx context.Context, a *app) (*valued, error) {
	if v.growth < 0 {
		return nil, fmt.Errorf("growth must not be negative, got %v", v.growth)
	}
	s, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	if v.scenario != "" {
		sc, err := whatif.ParseScenario(v.scenario)
		if err != nil {
			return nil, err
		}
		s.Scenario = sc
	}
	if v.asOf != "" {
		d, err := parseDay(v.asOf)
		if err != nil {
			return nil, err
		}
		s.AsOf = d
	}
	res := a.resolver(nil, v.oscillating)
	return &valued{
		session: s,
		valuation: renderer.Valuation{
			Scenario: s.Scenario,
			AsOf:     s.AsOf,
			Growth:   v.growth,
			RealData: res.RealData(),
			Currency: a.cfg.Currency,
		},
		mult: res.Func(ctx),
	}, nil
}

func (v *valued) rows() []whatif.ComputedRow { return v.session.Compute(v.mult, v.valuation.Growth) }

func (v *valued) timeline() whatif.Series { return v.session.Timeline(v.mult, v.valuation.Growth) }

// parseDay parses a YYYY-MM-DD date, or "today".
func parseDay(s string) (date.Date, error) {
	if s == "today" {
		return date.Today(), nil
	}
	return date.Parse(s)
}
