package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okunev/financetracker/internal/flow"
	"github.com/okunev/financetracker/internal/model"
	"github.com/okunev/financetracker/internal/report"
)

func TestCommittedTextIncludesEnteredValues(t *testing.T) {
	draft := flow.Draft{
		Category:    model.Category{Name: "Food & Dining"},
		Amount:      decimal.RequireFromString("12.5"),
		Description: "lunch",
		Kind:        model.KindExpense,
	}

	text := committedText(draft, "$")
	for _, want := range []string{"Food & Dining", "$12.50", "lunch"} {
		if !strings.Contains(text, want) {
			t.Errorf("committed text missing %q:\n%s", want, text)
		}
	}
}

func TestCommittedTextOmitsPlaceholderDescription(t *testing.T) {
	draft := flow.Draft{
		Category:    model.Category{Name: "Travel"},
		Amount:      decimal.NewFromInt(50),
		Description: flow.DefaultDescription,
		Kind:        model.KindExpense,
	}
	if strings.Contains(committedText(draft, "$"), flow.DefaultDescription) {
		t.Error("placeholder description should not be rendered")
	}
}

func TestReceiptConfirmText(t *testing.T) {
	draft := flow.Draft{
		Category:    model.Category{Name: "Food & Dining"},
		Amount:      decimal.RequireFromString("12.5"),
		Merchant:    "Cafe X",
		Date:        time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		Items:       []string{"espresso", "croissant", "juice", "cake"},
		FromReceipt: true,
	}

	text := receiptConfirmText(draft, "$")
	for _, want := range []string{"$12.50", "Cafe X", "Food & Dining", "2026-08-20", "espresso"} {
		if !strings.Contains(text, want) {
			t.Errorf("confirm text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "cake") {
		t.Error("confirm text should show at most three items")
	}
}

func TestRecentText(t *testing.T) {
	transactions := []model.Transaction{
		{
			Kind:        model.KindExpense,
			CategoryID:  "food",
			Amount:      decimal.RequireFromString("9.90"),
			Description: "coffee",
			Date:        time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			Kind:       model.KindIncome,
			CategoryID: "missing",
			Amount:     decimal.NewFromInt(100),
			Date:       time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		},
	}

	text := recentText(transactions, map[string]string{"food": "Food & Dining"}, "$")
	for _, want := range []string{"$9.90", "Food & Dining", "coffee", "Unknown", "2026-08-26"} {
		if !strings.Contains(text, want) {
			t.Errorf("recent text missing %q:\n%s", want, text)
		}
	}
}

func TestSummaryCaptionEmptyTopSpending(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	w := report.LastDays(7, now)
	s := report.Build([]model.Transaction{
		{Kind: model.KindIncome, CategoryID: "salary", Amount: decimal.NewFromInt(100), Date: now},
	}, map[string]string{"salary": "Salary"}, w)

	caption := summaryCaption(s, "$")
	if !strings.Contains(caption, "$100.00") {
		t.Errorf("caption missing income total:\n%s", caption)
	}
	if strings.Contains(caption, "Top spending") {
		t.Error("caption lists top spending without any expenses")
	}
}

func TestConversationKey(t *testing.T) {
	direct := conversationKey(42, 42)
	if direct.ChatID != 0 {
		t.Fatalf("direct chat key = %+v, want zero ChatID", direct)
	}
	group := conversationKey(42, -100500)
	if group.ChatID != -100500 {
		t.Fatalf("group chat key = %+v", group)
	}
}
