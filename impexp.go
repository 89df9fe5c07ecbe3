package whatif

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/whatif/date"
	"github.com/shopspring/decimal"
)

// this file contains the CSV import/export format.
//
// Import is lenient: three positional columns date,description,amount, an
// optional header, and rows that cannot be understood are dropped. Export
// writes computed rows with the multiplier and hypothetical value.

// ExportHeader is the first line written by ExportCSV.
const ExportHeader = "date,description,amount,multiplier,what_if"

const bom = "\ufeff"

// ImportReport describes what ImportCSV did with its input.
type ImportReport struct {
	Lines    int  // non blank lines read, header included
	Header   bool // whether the first line was taken as a header
	Imported int
	Skipped  int // malformed rows silently dropped
}

// ImportCSV reads transactions from r.
//
// Lines are trimmed and blank lines ignored. If the first line contains
// "date" (case insensitive) it is a header. Each row is split on ',' and must
// have at least three fields: a strict YYYY-MM-DD date, a description, and a
// finite amount where a decimal comma is accepted. Other rows are dropped.
//
// Unlike NewTransaction, zero and negative amounts are accepted.
//
// The error is only about reading r.
func ImportCSV(r io.Reader) ([]Transaction, ImportReport, error) {
	var (
		txs    []Transaction
		report ImportReport
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if report.Lines == 0 {
			line = strings.TrimPrefix(line, bom)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		report.Lines++
		if report.Lines == 1 && strings.Contains(strings.ToLower(line), "date") {
			report.Header = true
			continue
		}
		tx, ok := parseRow(line)
		if !ok {
			report.Skipped++
			continue
		}
		txs = append(txs, tx)
		report.Imported++
	}
	if err := scanner.Err(); err != nil {
		return nil, report, fmt.Errorf("reading CSV: %w", err)
	}
	return txs, report, nil
}

// parseRow parses a single data line.
func parseRow(line string) (Transaction, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return Transaction{}, false
	}
	on, err := date.Parse(parts[0])
	if err != nil {
		return Transaction{}, false
	}
	amount, err := parseAmount(parts[2])
	if err != nil {
		return Transaction{}, false
	}
	return Transaction{Date: on, Description: strings.TrimSpace(parts[1]), Amount: amount}, true
}

// ExportOptions tunes ExportCSV.
type ExportOptions struct {
	BOM    bool // prefix a UTF-8 byte order mark for spreadsheets
	Totals bool // append a TOTAL row
}

// descriptionCell keeps a description within its CSV field and line.
var descriptionCell = strings.NewReplacer(",", ";", "\r\n", " ", "\r", " ", "\n", " ")

// ExportCSV writes rows to w in list order.
//
// Commas in descriptions are replaced by ';' and line breaks by a space so
// that every row is one line with five fields. Amounts and the hypothetical
// value have 2 decimals, the multiplier 6.
func ExportCSV(w io.Writer, rows []ComputedRow, opts ExportOptions) error {
	bw := bufio.NewWriter(w)
	if opts.BOM {
		bw.WriteString(bom)
	}
	bw.WriteString(ExportHeader + "\n")
	for _, r := range rows {
		fmt.Fprintf(bw, "%s,%s,%s,%s,%s\n",
			r.Date,
			descriptionCell.Replace(r.Description),
			r.Amount.StringFixed(2),
			decimal.NewFromFloat(r.Multiplier).StringFixed(6),
			r.Value.StringFixed(2),
		)
	}
	if opts.Totals {
		t := Sum(rows)
		fmt.Fprintf(bw, "TOTAL,,%s,,%s\n", t.Spent.StringFixed(2), t.Value.StringFixed(2))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
