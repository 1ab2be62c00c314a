// Package export renders transaction snapshots as downloadable files.
package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Format identifies an export file type.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// Content types served with each format.
const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypePDF = "application/pdf"
)

// CSVFileName is the download name of the CSV export.
const CSVFileName = "transacoes.csv"

const dateLayout = "02/01/2006"

// ReportFileName names a PDF report after its generation instant, for example
// transacoes_2024-05-01T13-45-07-123Z.pdf.
func ReportFileName(now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "transacoes_" + stamp + ".pdf"
}

// FormatDate renders the calendar date of t in loc as dd/mm/yyyy.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

// FormatAmount renders d with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatMoney renders d as a currency amount, R$ 1234.50.
func FormatMoney(d decimal.Decimal) string {
	return "R$ " + FormatAmount(d)
}

func categoryOrDash(c string) string {
	if strings.TrimSpace(c) == "" {
		return "-"
	}
	return c
}
