package report

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okunev/financetracker/internal/model"
)

var testNames = map[string]string{
	"food":   "Food & Dining",
	"travel": "Travel",
	"salary": "Salary",
}

func tx(kind, categoryID, amount string, date time.Time) model.Transaction {
	return model.Transaction{
		Kind:       kind,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
	}
}

func TestBuildEmptyWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	w := LastDays(7, now)

	s := Build(nil, testNames, w)
	if !s.Empty {
		t.Fatal("summary of no transactions not marked empty")
	}
	if len(s.ExpenseByCategory) != 0 || len(s.Daily) != 0 {
		t.Fatalf("empty summary carries data: %+v", s)
	}

	// Transactions outside the window count as empty too.
	old := []model.Transaction{tx(model.KindExpense, "food", "10", now.AddDate(0, 0, -30))}
	s = Build(old, testNames, w)
	if !s.Empty {
		t.Fatal("out-of-window transactions should produce an empty summary")
	}
}

func TestBuildTotalsAndShares(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	w := LastDays(7, now)
	transactions := []model.Transaction{
		tx(model.KindExpense, "food", "30", now),
		tx(model.KindExpense, "food", "20", now.AddDate(0, 0, -1)),
		tx(model.KindExpense, "travel", "50", now.AddDate(0, 0, -2)),
		tx(model.KindIncome, "salary", "1000", now.AddDate(0, 0, -3)),
	}

	s := Build(transactions, testNames, w)
	if s.Empty {
		t.Fatal("summary unexpectedly empty")
	}
	if !s.TotalExpense.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("TotalExpense = %s, want 100", s.TotalExpense)
	}
	if !s.TotalIncome.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("TotalIncome = %s, want 1000", s.TotalIncome)
	}
	if !s.Balance.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("Balance = %s, want 900", s.Balance)
	}

	if len(s.ExpenseByCategory) != 2 {
		t.Fatalf("expense categories = %d, want 2", len(s.ExpenseByCategory))
	}
	// Sorted descending by amount.
	if s.ExpenseByCategory[0].Name != "Food & Dining" || s.ExpenseByCategory[1].Name != "Travel" {
		t.Fatalf("category order = %q, %q", s.ExpenseByCategory[0].Name, s.ExpenseByCategory[1].Name)
	}

	var shareSum float64
	for _, ct := range s.ExpenseByCategory {
		shareSum += ct.Share
	}
	if math.Abs(shareSum-100) > 0.01 {
		t.Fatalf("expense shares sum to %.4f, want 100", shareSum)
	}
	if math.Abs(s.ExpenseByCategory[0].Share-50) > 0.01 {
		t.Fatalf("food share = %.4f, want 50", s.ExpenseByCategory[0].Share)
	}
}

func TestBuildDailySeriesCoversWholeWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	w := LastDays(7, now)
	transactions := []model.Transaction{
		tx(model.KindExpense, "food", "10", now),
		tx(model.KindIncome, "salary", "100", now.AddDate(0, 0, -6)),
	}

	s := Build(transactions, testNames, w)
	if len(s.Daily) != 7 {
		t.Fatalf("daily buckets = %d, want 7 (quiet days included)", len(s.Daily))
	}
	first, last := s.Daily[0], s.Daily[len(s.Daily)-1]
	if !first.Income.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("first day income = %s, want 100", first.Income)
	}
	if !last.Expense.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("last day expense = %s, want 10", last.Expense)
	}
	if !s.Daily[3].Income.IsZero() || !s.Daily[3].Expense.IsZero() {
		t.Fatalf("quiet day carries totals: %+v", s.Daily[3])
	}
}

func TestBuildUnknownCategoryName(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	w := LastDays(7, now)
	s := Build([]model.Transaction{tx(model.KindExpense, "gone", "5", now)}, testNames, w)
	if s.ExpenseByCategory[0].Name != "Unknown" {
		t.Fatalf("name = %q, want Unknown", s.ExpenseByCategory[0].Name)
	}
}

func TestLastDaysBounds(t *testing.T) {
	now := time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)
	w := LastDays(7, now)
	if got := w.End.Format("2006-01-02"); got != "2026-08-28" {
		t.Fatalf("End = %s", got)
	}
	if got := w.Start.Format("2006-01-02"); got != "2026-08-22" {
		t.Fatalf("Start = %s", got)
	}
}
