package whatif

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/whatif/date"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Transaction is a historical cash outflow in the reporting currency.
type Transaction struct {
	Date        date.Date       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// ComputedRow is a transaction enriched with its resolved multiplier and
// hypothetical value (Amount × Multiplier).
type ComputedRow struct {
	Transaction
	Multiplier float64         `json:"multiplier"`
	Value      decimal.Decimal `json:"what_if"`
}

// ManualEntry is a single transaction typed in by the user.
type ManualEntry struct {
	Date        string `validate:"required,datetime=2006-01-02"`
	Description string `validate:"max=200"`
	Amount      string `validate:"required"`
}

// defaultDescription is used when a manual entry has none.
const defaultDescription = "Manual"

var validate = validator.New()

// NewTransaction validates a manual entry.
//
// Manual entries are stricter than CSV import: the amount must be strictly
// positive. It returns ErrInvalidDate or ErrInvalidAmount.
func NewTransaction(e ManualEntry) (Transaction, error) {
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Date":
					return Transaction{}, fmt.Errorf("%w %q", ErrInvalidDate, e.Date)
				case "Amount":
					return Transaction{}, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
				}
			}
		}
		return Transaction{}, fmt.Errorf("invalid entry: %w", err)
	}
	on, err := date.Parse(e.Date)
	if err != nil {
		return Transaction{}, err
	}
	amount, err := parseAmount(e.Amount)
	if err != nil {
		return Transaction{}, err
	}
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w %s: must be positive", ErrInvalidAmount, amount)
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		desc = defaultDescription
	}
	return Transaction{Date: on, Description: desc, Amount: amount}, nil
}

// parseAmount parses a finite decimal number, a decimal comma is accepted.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	return d, nil
}
