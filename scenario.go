package whatif

import (
	"fmt"
	"strings"
)

// Scenario selects the reference asset of a what-if computation.
type Scenario string

const (
	SP500 Scenario = "sp500"
	MSCI  Scenario = "msci"
	BTC   Scenario = "btc"
)

// Scenarios returns all known scenarios in display order.
func Scenarios() []Scenario { return []Scenario{SP500, MSCI, BTC} }

// ParseScenario parses a scenario name, case insensitive.
func ParseScenario(s string) (Scenario, error) {
	switch sc := Scenario(strings.ToLower(strings.TrimSpace(s))); sc {
	case SP500, MSCI, BTC:
		return sc, nil
	default:
		return "", fmt.Errorf("unknown scenario %q, want one of sp500, msci, btc", s)
	}
}

// Label returns a human readable name.
func (s Scenario) Label() string {
	switch s {
	case SP500:
		return "S&P 500"
	case MSCI:
		return "MSCI World"
	case BTC:
		return "Bitcoin"
	default:
		return string(s)
	}
}

// IsCrypto reports whether the scenario is priced by the crypto provider.
func (s Scenario) IsCrypto() bool { return s == BTC }

func (s Scenario) String() string { return string(s) }

// Symbols maps each scenario to the upstream identifier used for real data:
// a ticker for equities, a coin id for crypto.
type Symbols map[Scenario]string

// DefaultSymbols are ETFs tracking the indexes, and the bitcoin coin id.
func DefaultSymbols() Symbols {
	return Symbols{SP500: "SPY", MSCI: "URTH", BTC: "bitcoin"}
}
