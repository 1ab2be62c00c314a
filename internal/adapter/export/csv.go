package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/iho/fintrack/internal/domain"
)

var csvHeader = []string{"Tipo", "Categoria", "Valor", "Data"}

// WriteCSV writes one semicolon separated row per transaction, in input
// order, after a header row.
func WriteCSV(w io.Writer, transactions []*domain.Transaction, loc *time.Location) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, t := range transactions {
		row := []string{
			t.Type.Label(),
			categoryOrDash(t.Category),
			FormatAmount(t.Amount),
			FormatDate(t.CreatedAt, loc),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
