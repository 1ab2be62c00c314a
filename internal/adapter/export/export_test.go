package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fintrack/internal/domain"
)

func fixture() []*domain.Transaction {
	return []*domain.Transaction{
		{ID: "1", Type: domain.TransactionTypeIncome, Category: "Salário", Amount: decimal.NewFromInt(100), CreatedAt: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)},
		{ID: "2", Type: domain.TransactionTypeExpense, Category: "Transporte", Amount: decimal.RequireFromString("40.5"), CreatedAt: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)},
		{ID: "3", Type: domain.TransactionTypeExpense, Category: "", Amount: decimal.NewFromInt(3), CreatedAt: time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC)},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixture(), time.UTC))

	want := "Tipo;Categoria;Valor;Data\n" +
		"ganho;Salário;100.00;05/01/2024\n" +
		"gasto;Transporte;40.50;10/01/2024\n" +
		"gasto;-;3.00;11/01/2024\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_QuotesDelimiterAndUsesLocation(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	ts := []*domain.Transaction{
		{ID: "1", Type: "legacy", Category: `Casa; "reforma"`, Amount: decimal.NewFromInt(1), CreatedAt: time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ts, saoPaulo))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `legacy;"Casa; ""reforma""";1.00;31/01/2024`, lines[1])
}

func TestWriteCSV_EmptyHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, nil))
	assert.Equal(t, "Tipo;Categoria;Valor;Data\n", buf.String())
}

func TestReportFileName(t *testing.T) {
	now := time.Date(2024, 5, 1, 13, 45, 7, 123_000_000, time.FixedZone("BRT", -3*60*60))
	assert.Equal(t, "transacoes_2024-05-01T16-45-07-123Z.pdf", ReportFileName(now))
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := BuildReport(fixture(), time.UTC, now)

	assert.Equal(t, ReportTitle, r.Title)
	assert.Equal(t, now, r.GeneratedAt)
	assert.Equal(t, []SummaryLine{
		{Label: "Total de Ganhos", Value: "R$ 100.00"},
		{Label: "Total de Gastos", Value: "R$ 43.50"},
		{Label: "Saldo", Value: "R$ 56.50"},
	}, r.Summary)

	require.Len(t, r.Sections, 2)
	assert.Equal(t, "Ganhos", r.Sections[0].Title)
	assert.Equal(t, []ReportRow{{Category: "Salário", Amount: "R$ 100.00", Date: "05/01/2024"}}, r.Sections[0].Rows)
	assert.Equal(t, "Gastos", r.Sections[1].Title)
	assert.Len(t, r.Sections[1].Rows, 2)
	assert.Equal(t, "-", r.Sections[1].Rows[1].Category)
}

func TestBuildReport_OmitsEmptySections(t *testing.T) {
	onlyExpenses := fixture()[1:]
	r := BuildReport(onlyExpenses, time.UTC, time.Now())

	require.Len(t, r.Sections, 1)
	assert.Equal(t, domain.TransactionTypeExpense, r.Sections[0].Type)

	empty := BuildReport(nil, time.UTC, time.Now())
	assert.Empty(t, empty.Sections)
	assert.Equal(t, "R$ 0.00", empty.Summary[2].Value)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	r := BuildReport(fixture(), time.UTC, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, WritePDF(&buf, r))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderPDF_PaginatesLongTables(t *testing.T) {
	ts := make([]*domain.Transaction, 0, 120)
	for i := 0; i < 120; i++ {
		ts = append(ts, &domain.Transaction{
			ID:        fmt.Sprint(i),
			Type:      domain.TransactionTypeExpense,
			Category:  "Supermercado",
			Amount:    decimal.NewFromInt(int64(i + 1)),
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}

	pdf := renderPDF(BuildReport(ts, time.UTC, time.Now()))
	require.NoError(t, pdf.Error())
	assert.Greater(t, pdf.PageCount(), 1)
}
