package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/date"
	"github.com/etnz/whatif/openfigi"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusOf maps a Quote error to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, whatif.ErrRealDataDisabled), errors.Is(err, whatif.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, whatif.ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.Is(err, whatif.ErrDataUnavailable):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

type multiplierResponse struct {
	Multiplier float64       `json:"multiplier"`
	Symbol     string        `json:"symbol,omitempty"`
	Source     whatif.Source `json:"source"`
	From       date.Date     `json:"from"`
	To         date.Date     `json:"to"`
}

// multiplier serves real data only, there is no fallback here: the caller
// decides what to do with a failure.
func (s *Server) multiplier(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		fail(c, http.StatusBadRequest, errors.New("missing from/to"))
		return
	}
	sc, err := whatif.ParseScenario(c.DefaultQuery("scenario", string(whatif.SP500)))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	d0, err := date.Parse(from)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	d1, err := date.Parse(to)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	q, err := s.resolver.Quote(c.Request.Context(), sc, d0, d1)
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("multiplier failed", zap.String("scenario", string(sc)), zap.Int("status", status), zap.Error(err))
		}
		fail(c, status, err)
		return
	}
	c.JSON(http.StatusOK, multiplierResponse{
		Multiplier: q.Multiplier,
		Symbol:     q.Symbol,
		Source:     q.Source,
		From:       q.From,
		To:         q.To,
	})
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []openfigi.Hit `json:"results"`
}

func (s *Server) openfigi(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, errors.New("missing q"))
		return
	}
	if s.searcher == nil {
		fail(c, http.StatusInternalServerError, whatif.ErrNotConfigured)
		return
	}
	hits, err := s.searcher.Search(c.Request.Context(), q)
	if err != nil {
		s.logger.Warn("openfigi search failed", zap.String("query", q), zap.Error(err))
		fail(c, http.StatusBadGateway, err)
		return
	}
	if hits == nil {
		hits = []openfigi.Hit{}
	}
	c.JSON(http.StatusOK, searchResponse{Query: q, Results: hits})
}

type computeRequest struct {
	Scenario     string               `json:"scenario" binding:"required"`
	AsOf         date.Date            `json:"asOf"`
	Growth       float64              `json:"growth" binding:"gte=0"`
	Transactions []whatif.Transaction `json:"transactions"`
}

type totals struct {
	Count int             `json:"count"`
	Spent decimal.Decimal `json:"spent"`
	Value decimal.Decimal `json:"what_if"`
	Gain  decimal.Decimal `json:"gain"`
}

type computeResponse struct {
	Scenario whatif.Scenario      `json:"scenario"`
	AsOf     date.Date            `json:"asOf"`
	Currency string               `json:"currency"`
	RealData bool                 `json:"real_data"`
	Rows     []whatif.ComputedRow `json:"rows"`
	Totals   totals               `json:"totals"`
	Series   whatif.Series        `json:"series"`
}

// compute values transactions, it never fails on market data: the resolver
// falls back to the deterministic model.
func (s *Server) compute(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	sc, err := whatif.ParseScenario(req.Scenario)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	for i, tx := range req.Transactions {
		if tx.Date.IsZero() {
			fail(c, http.StatusBadRequest, fmt.Errorf("%w: transaction %d has no date", whatif.ErrInvalidDate, i))
			return
		}
	}
	if req.AsOf.IsZero() {
		req.AsOf = date.Today()
	}

	mult := s.resolver.Func(c.Request.Context())
	rows := whatif.Compute(req.Transactions, sc, req.AsOf, req.Growth, mult)
	sum := whatif.Sum(rows)
	c.JSON(http.StatusOK, computeResponse{
		Scenario: sc,
		AsOf:     req.AsOf,
		Currency: s.currency,
		RealData: s.resolver.RealData(),
		Rows:     rows,
		Totals:   totals{Count: sum.Count, Spent: sum.Spent, Value: sum.Value, Gain: sum.Gain()},
		Series:   whatif.Timeline(req.Transactions, sc, req.AsOf, req.Growth, mult),
	})
}
