// Package whatif values a list of past spendings as if each amount had been
// invested instead, on the day it was spent, in a market scenario (the S&P 500,
// the MSCI World or Bitcoin), and held until an as-of date.
//
// The core functionalities include:
//   - Transactions: manual entries and CSV imports, normalized into signed
//     amounts where refunds are negative.
//   - Multipliers: the growth factor of a scenario between two days, taken
//     from real market data when it is enabled and available, and from a
//     deterministic model otherwise.
//   - Valuation: per transaction values, totals and the cumulative timeline
//     of the hypothetical portfolio.
//   - Persistence: a session holding the transactions, the scenario and the
//     as-of date in a key-value store.
//
// This package serves as the foundational logic for the `mm` command-line
// tool and its HTTP server.
package whatif
