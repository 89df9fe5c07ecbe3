package whatif

import (
	"errors"

	"github.com/etnz/whatif/date"
)

// Errors returned by the valuation engine. They are wrapped with context, use
// errors.Is to test for them.
var (
	// ErrInvalidDate is a malformed or out of range date, the row is rejected.
	ErrInvalidDate = date.ErrInvalidDate
	// ErrInvalidAmount is a non finite amount, or a non positive one where positivity is required.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrProvider is an upstream HTTP or payload failure.
	ErrProvider = errors.New("provider error")
	// ErrDataUnavailable means no price was found within the search window.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrUpstream is a generic failure to obtain real market data.
	ErrUpstream = errors.New("upstream error")
	// ErrRealDataDisabled is returned by Quote when the real-data flag is off.
	ErrRealDataDisabled = errors.New("real data disabled")
	// ErrNotConfigured is a missing provider or API key, real data cannot work at all.
	ErrNotConfigured = errors.New("not configured")
	// ErrComputation is a multiplier that is not finite or not strictly positive.
	ErrComputation = errors.New("invalid multiplier")
)
