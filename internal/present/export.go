package present

import (
	"encoding/csv"
	"fmt"
	"io"

	"fintrack/internal/core"
)

var csvHeader = []string{"id", "date", "description", "category", "amount"}

// WriteCSV writes txs with a header row. Amounts use two decimals and a dot.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		rec := []string{tx.ID, NormalizeDate(tx.Date), tx.Description, tx.Category, tx.Amount.String()}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
