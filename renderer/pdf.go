package renderer

import (
	"io"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
)

// pdfBottom is the ordinate, in mm, past which rows go to a new page.
const pdfBottom = 270

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "C"},
	{"DATE", 24, "C"},
	{"DESCRIPTION", 70, "L"},
	{"AMOUNT", 26, "R"},
	{"MULTIPLIER", 24, "R"},
	{"WHAT IF", 28, "R"},
}

// WritePDF writes r as a single table PDF document.
func WritePDF(w io.Writer, r *Results) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252, which covers the currency symbols go-money uses
	// for the common currencies.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("What if: "+r.Scenario+" on "+r.AsOf))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, tr("Valued with "+r.Source+"."))
	pdf.Ln(5)
	if r.Growth != "" {
		pdf.Cell(0, 6, "Growth factor x"+r.Growth+".")
		pdf.Ln(5)
	}
	pdf.Ln(5)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)
	sumW := []float64{45.5, 45.5, 45.5, 45.5}
	pdf.CellFormat(sumW[0], 10, "Spent", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "What if", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Gain", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[3], 10, "Gain %", "1", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, tr(r.Spent), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, tr(r.Value), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, tr(r.Gain), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[3], 10, r.GainPercent, "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(245, 245, 245)
		for i, c := range pdfColumns {
			ln := 0
			if i == len(pdfColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(c.width, 8, c.title, "1", ln, c.align, true, 0, "")
		}
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	if len(r.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No transactions yet.", "1", 1, "C", false, 0, "")
	}
	for _, row := range r.Rows {
		if pdf.GetY() > pdfBottom {
			pdf.AddPage()
			header()
		}
		cells := []string{
			strconv.Itoa(row.Index),
			row.Date,
			trimTo(strings.ReplaceAll(row.Description, `\|`, "|"), 40),
			row.Amount,
			row.Multiplier,
			row.Value,
		}
		for i, c := range pdfColumns {
			ln := 0
			if i == len(pdfColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(c.width, 7, tr(cells[i]), "1", ln, c.align, false, 0, "")
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// trimTo shortens s to at most max runes.
func trimTo(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
