package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/date"
	"github.com/etnz/whatif/openfigi"
)

// Valuation is what every report shares: the scenario and how it was valued.
type Valuation struct {
	Scenario whatif.Scenario
	AsOf     date.Date
	Growth   float64
	RealData bool
	Currency string
}

func (v Valuation) source() string {
	if v.RealData {
		return "real market data, the deterministic model where it is missing"
	}
	return "the deterministic model"
}

func (v Valuation) growth() string {
	if !(v.Growth > 0) || v.Growth == 1 {
		return ""
	}
	return strconv.FormatFloat(v.Growth, 'f', -1, 64)
}

// Results is the view of a list of valued transactions. Every amount is
// already formatted.
type Results struct {
	Scenario    string      `json:"scenario"`
	AsOf        string      `json:"asOf"`
	Source      string      `json:"source"`
	Growth      string      `json:"growth,omitempty"`
	Rows        []ResultRow `json:"rows"`
	Spent       string      `json:"spent"`
	Value       string      `json:"value"`
	Gain        string      `json:"gain"`
	GainPercent string      `json:"gainPercent"`
}

type ResultRow struct {
	Index       int    `json:"index"` // one based, as used by mm remove
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Multiplier  string `json:"multiplier"`
	Value       string `json:"value"`
}

// NewResults builds the view of rows.
func NewResults(v Valuation, rows []whatif.ComputedRow) *Results {
	r := &Results{
		Scenario: v.Scenario.Label(),
		AsOf:     v.AsOf.String(),
		Source:   v.source(),
		Growth:   v.growth(),
	}
	for i, row := range rows {
		r.Rows = append(r.Rows, ResultRow{
			Index:       i + 1,
			Date:        row.Date.String(),
			Description: cell(row.Description),
			Amount:      whatif.M(row.Amount, v.Currency).String(),
			Multiplier:  fmt.Sprintf("%.4f", row.Multiplier),
			Value:       whatif.M(row.Value, v.Currency).String(),
		})
	}
	t := whatif.Sum(rows)
	spent, value := whatif.M(t.Spent, v.Currency), whatif.M(t.Value, v.Currency)
	r.Spent = spent.String()
	r.Value = value.String()
	r.Gain = value.Sub(spent).String()
	r.GainPercent = "n/a"
	if !t.Spent.IsZero() {
		r.GainPercent = fmt.Sprintf("%+.2f%%", t.Gain().Div(t.Spent).InexactFloat64()*100)
	}
	return r
}

// cell escapes a markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}

// Timeline is the view of a cumulative portfolio series.
type Timeline struct {
	Scenario string          `json:"scenario"`
	AsOf     string          `json:"asOf"`
	Source   string          `json:"source"`
	Growth   string          `json:"growth,omitempty"`
	Points   []TimelinePoint `json:"points"`
}

type TimelinePoint struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// NewTimeline builds the view of s.
func NewTimeline(v Valuation, s whatif.Series) *Timeline {
	t := &Timeline{
		Scenario: v.Scenario.Label(),
		AsOf:     v.AsOf.String(),
		Source:   v.source(),
		Growth:   v.growth(),
	}
	for i, d := range s.Dates {
		t.Points = append(t.Points, TimelinePoint{Date: d.String(), Value: whatif.M(s.Values[i], v.Currency).String()})
	}
	return t
}

// Search is the view of an instrument search.
type Search struct {
	Query string         `json:"query"`
	ISIN  bool           `json:"isin"`
	Hits  []openfigi.Hit `json:"hits"`
}

// NewSearch builds the view of hits found for q.
func NewSearch(q string, hits []openfigi.Hit) *Search {
	s := &Search{Query: q, ISIN: openfigi.IsISIN(q)}
	for _, h := range hits {
		h.Name = cell(h.Name)
		s.Hits = append(s.Hits, h)
	}
	return s
}
