package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/okunev/financetracker/internal/model"
)

var csvHeader = []string{"date", "kind", "category", "amount", "currency", "description", "input_method"}

// ExportCSV renders transactions as CSV bytes, newest first as given.
func ExportCSV(transactions []model.Transaction, categoryNames map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range transactions {
		name := categoryNames[t.CategoryID]
		if name == "" {
			name = "Unknown"
		}
		record := []string{
			t.Date.Format("2006-01-02"),
			t.Kind,
			name,
			t.Amount.String(),
			t.Currency,
			t.Description,
			t.InputMethod,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFilename names a CSV export for one user on a given day.
func ExportFilename(userID int64, now time.Time) string {
	return fmt.Sprintf("transactions_%d_%s.csv", userID, now.Format("20060102"))
}
