// Package report aggregates transactions into summaries and exports. All
// functions are pure over the transaction list they are given.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okunev/financetracker/internal/model"
)

// Window is a bounded time range, inclusive of both days.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastDays returns a window covering the n calendar days ending today.
// Days are normalized to UTC so they bucket consistently regardless of
// where a transaction's date was recorded.
func LastDays(n int, now time.Time) Window {
	end := dateOnly(now)
	return Window{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// CategoryTotal is one category's contribution within a window.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Amount     decimal.Decimal
	Share      float64 // percent of the kind's total
}

// DayTotal buckets one calendar day for trend rendering.
type DayTotal struct {
	Day     time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Summary is the aggregate over one window. Empty is set when the window
// holds no transactions; all other fields are then zero and no shares are
// computed, which keeps the percentage math away from empty sets.
type Summary struct {
	Window            Window
	Empty             bool
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	Balance           decimal.Decimal
	ExpenseByCategory []CategoryTotal
	IncomeByCategory  []CategoryTotal
	Daily             []DayTotal
}

// Build aggregates the transactions falling inside the window. Category
// names are resolved through the given id→name map.
func Build(transactions []model.Transaction, categoryNames map[string]string, w Window) Summary {
	s := Summary{Window: w}

	expenseByCat := make(map[string]decimal.Decimal)
	incomeByCat := make(map[string]decimal.Decimal)
	daily := make(map[time.Time]*DayTotal)

	count := 0
	for _, t := range transactions {
		day := dateOnly(t.Date)
		if day.Before(w.Start) || day.After(w.End) {
			continue
		}
		count++

		bucket, ok := daily[day]
		if !ok {
			bucket = &DayTotal{Day: day}
			daily[day] = bucket
		}

		switch t.Kind {
		case model.KindIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			incomeByCat[t.CategoryID] = incomeByCat[t.CategoryID].Add(t.Amount)
			bucket.Income = bucket.Income.Add(t.Amount)
		default:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			expenseByCat[t.CategoryID] = expenseByCat[t.CategoryID].Add(t.Amount)
			bucket.Expense = bucket.Expense.Add(t.Amount)
		}
	}

	if count == 0 {
		s.Empty = true
		return s
	}

	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	s.ExpenseByCategory = categoryTotals(expenseByCat, s.TotalExpense, categoryNames)
	s.IncomeByCategory = categoryTotals(incomeByCat, s.TotalIncome, categoryNames)

	// Every day of the window appears in the series, including quiet ones,
	// so trend charts have an even x axis.
	for day := w.Start; !day.After(w.End); day = day.AddDate(0, 0, 1) {
		if bucket, ok := daily[day]; ok {
			s.Daily = append(s.Daily, *bucket)
		} else {
			s.Daily = append(s.Daily, DayTotal{Day: day})
		}
	}

	return s
}

func categoryTotals(byCat map[string]decimal.Decimal, total decimal.Decimal, names map[string]string) []CategoryTotal {
	result := make([]CategoryTotal, 0, len(byCat))
	for id, amount := range byCat {
		ct := CategoryTotal{
			CategoryID: id,
			Name:       names[id],
			Amount:     amount,
		}
		if ct.Name == "" {
			ct.Name = "Unknown"
		}
		if total.IsPositive() {
			ct.Share, _ = amount.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		}
		result = append(result, ct)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Amount.Equal(result[j].Amount) {
			return result[i].Name < result[j].Name
		}
		return result[i].Amount.GreaterThan(result[j].Amount)
	})
	return result
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
