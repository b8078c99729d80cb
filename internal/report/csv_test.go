package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okunev/financetracker/internal/model"
)

func TestExportCSV(t *testing.T) {
	date := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	transactions := []model.Transaction{
		{
			Kind:        model.KindExpense,
			CategoryID:  "food",
			Amount:      decimal.RequireFromString("12.5"),
			Currency:    "$",
			Description: "lunch, with a comma",
			Date:        date,
			InputMethod: model.InputManual,
		},
		{
			Kind:        model.KindIncome,
			CategoryID:  "gone",
			Amount:      decimal.RequireFromString("1000"),
			Currency:    "$",
			Date:        date,
			InputMethod: model.InputReceipt,
		},
	}

	data, err := ExportCSV(transactions, map[string]string{"food": "Food & Dining"})
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("re-parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(records))
	}
	if records[0][0] != "date" || records[0][3] != "amount" {
		t.Fatalf("header = %v", records[0])
	}

	first := records[1]
	if first[0] != "2026-08-20" || first[1] != "expense" || first[2] != "Food & Dining" ||
		first[3] != "12.5" || first[5] != "lunch, with a comma" {
		t.Fatalf("first row = %v", first)
	}
	if records[2][2] != "Unknown" {
		t.Fatalf("unmapped category rendered as %q", records[2][2])
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	if got := ExportFilename(42, now); got != "transactions_42_20260828.csv" {
		t.Fatalf("filename = %q", got)
	}
}
