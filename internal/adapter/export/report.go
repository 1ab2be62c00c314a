package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/iho/fintrack/internal/domain"
)

// ReportTitle heads every PDF report.
const ReportTitle = "Relatório de Transações"

// SummaryLine is one labelled total at the top of a report.
type SummaryLine struct {
	Label string
	Value string
}

// ReportRow is one transaction line of a report table.
type ReportRow struct {
	Category string
	Amount   string
	Date     string
}

// ReportSection is a titled table of transactions of one type.
type ReportSection struct {
	Title string
	Type  domain.TransactionType
	Rows  []ReportRow
}

// Report is the layout-independent content of a PDF export.
type Report struct {
	GeneratedAt time.Time
	Title       string
	Summary     []SummaryLine
	Sections    []ReportSection
}

// BuildReport lays out the totals line block and one table per transaction
// type. A table with no rows is left out.
func BuildReport(transactions []*domain.Transaction, loc *time.Location, now time.Time) Report {
	totals := domain.ComputeTotals(transactions)

	r := Report{
		GeneratedAt: now,
		Title:       ReportTitle,
		Summary: []SummaryLine{
			{Label: "Total de Ganhos", Value: FormatMoney(totals.Income)},
			{Label: "Total de Gastos", Value: FormatMoney(totals.Expense)},
			{Label: "Saldo", Value: FormatMoney(totals.Balance)},
		},
	}

	sections := []ReportSection{
		{Title: "Ganhos", Type: domain.TransactionTypeIncome},
		{Title: "Gastos", Type: domain.TransactionTypeExpense},
	}
	for _, s := range sections {
		for _, t := range transactions {
			if t.Type != s.Type {
				continue
			}
			s.Rows = append(s.Rows, ReportRow{
				Category: categoryOrDash(t.Category),
				Amount:   FormatMoney(t.Amount),
				Date:     FormatDate(t.CreatedAt, loc),
			})
		}
		if len(s.Rows) > 0 {
			r.Sections = append(r.Sections, s)
		}
	}

	return r
}

// Page geometry in millimetres.
const (
	pageMargin   = 15.0
	rowHeight    = 7.0
	colCategory  = 100.0
	colAmount    = 45.0
	colDate      = 35.0
	sectionSpace = 6.0
)

var tableHeader = []string{"Categoria", "Valor", "Data"}

// WritePDF renders r as an A4 document.
func WritePDF(w io.Writer, r Report) error {
	pdf := renderPDF(r)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func renderPDF(r Report) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	if !r.GeneratedAt.IsZero() {
		pdf.SetCreationDate(r.GeneratedAt)
	}
	pdf.SetTitle(r.Title, true)

	// Core fonts are cp1252; the translator maps accented labels.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if !r.GeneratedAt.IsZero() {
		pdf.CellFormat(0, 5, tr("Gerado em "+r.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range r.Summary {
		pdf.CellFormat(50, rowHeight, tr(line.Label+":"), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, rowHeight, tr(line.Value), "", 1, "L", false, 0, "")
	}

	for _, s := range r.Sections {
		pdf.Ln(sectionSpace)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 9, tr(s.Title), "", 1, "L", false, 0, "")
		writeTableHeader(pdf, tr)

		pdf.SetFont("Helvetica", "", 10)
		for _, row := range s.Rows {
			if needsBreak(pdf) {
				pdf.AddPage()
				writeTableHeader(pdf, tr)
				pdf.SetFont("Helvetica", "", 10)
			}
			pdf.CellFormat(colCategory, rowHeight, tr(row.Category), "1", 0, "L", false, 0, "")
			pdf.CellFormat(colAmount, rowHeight, tr(row.Amount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(colDate, rowHeight, row.Date, "1", 1, "C", false, 0, "")
		}
	}

	return pdf
}

func writeTableHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	widths := []float64{colCategory, colAmount, colDate}
	for i, h := range tableHeader {
		ln := 0
		if i == len(tableHeader)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], rowHeight, tr(h), "1", ln, "C", true, 0, "")
	}
}

// needsBreak reports whether the next row would cross the bottom margin.
func needsBreak(pdf *fpdf.Fpdf) bool {
	_, pageHeight := pdf.GetPageSize()
	return pdf.GetY()+rowHeight > pageHeight-pageMargin
}
