package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okunev/financetracker/internal/flow"
	"github.com/okunev/financetracker/internal/model"
	"github.com/okunev/financetracker/internal/report"
)

func welcomeText(username string) string {
	if username == "" {
		username = "there"
	}
	return fmt.Sprintf(
		"<b>🏦 Finance Tracker Bot</b>\n\n"+
			"Hello <b>%s</b>! I'm here to help you track your finances.\n\n"+
			"<b>Available Commands:</b>\n"+
			"💵 /add_transaction - Add a transaction\n"+
			"📋 /recent - Show recent transactions\n"+
			"📊 /summary - View weekly financial summary\n"+
			"📊 /export - Export transactions as CSV\n\n"+
			"<b>Image Recognition:</b>\n"+
			"📸 Just send me a photo of your receipt and I'll extract the details automatically!",
		username)
}

func promptDescription(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("Amount: <b>%s</b>\n\n📝 Please enter a description (or send /skip):",
		money(amount, currency))
}

func committedText(draft flow.Draft, currency string) string {
	var sb strings.Builder
	sb.WriteString("✅ 💵 Transaction added successfully!\n\n")
	fmt.Fprintf(&sb, "<b>Category:</b> %s\n", draft.Category.Name)
	fmt.Fprintf(&sb, "<b>Amount:</b> %s\n", money(draft.Amount, currency))
	if draft.Description != "" && draft.Description != flow.DefaultDescription {
		fmt.Fprintf(&sb, "<b>Description:</b> %s\n", draft.Description)
	}
	return sb.String()
}

func receiptConfirmText(draft flow.Draft, currency string) string {
	var sb strings.Builder
	sb.WriteString("<b>📋 Receipt Analysis Results:</b>\n\n")
	fmt.Fprintf(&sb, "💰 <b>Amount:</b> %s\n", money(draft.Amount, currency))
	merchant := draft.Merchant
	if merchant == "" {
		merchant = "Unknown"
	}
	fmt.Fprintf(&sb, "🏪 <b>Merchant:</b> %s\n", merchant)
	fmt.Fprintf(&sb, "📂 <b>Category:</b> %s\n", draft.Category.Name)
	fmt.Fprintf(&sb, "📅 <b>Date:</b> %s\n", draft.Date.Format("2006-01-02"))
	if len(draft.Items) > 0 {
		items := draft.Items
		if len(items) > 3 {
			items = items[:3]
		}
		fmt.Fprintf(&sb, "🛍️ <b>Items:</b> %s\n", strings.Join(items, ", "))
	}
	sb.WriteString("\nWould you like to save this transaction?")
	return sb.String()
}

func recentText(transactions []model.Transaction, names map[string]string, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>📋 Recent Transactions (Last %d Days):</b>\n\n", recentDays)
	for _, t := range transactions {
		emoji := "💸"
		if t.Kind == model.KindIncome {
			emoji = "💰"
		}
		name := names[t.CategoryID]
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&sb, "%s %s - %s\n", emoji, money(t.Amount, currency), name)
		if t.Description != "" {
			fmt.Fprintf(&sb, "   📝 %s\n", t.Description)
		}
		fmt.Fprintf(&sb, "   📅 %s\n\n", t.Date.Format("2006-01-02"))
	}
	return sb.String()
}

func summaryCaption(s report.Summary, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>📊 Summary %s – %s</b>\n\n",
		s.Window.Start.Format("Jan 02"), s.Window.End.Format("Jan 02"))
	fmt.Fprintf(&sb, "💰 Income: %s\n", money(s.TotalIncome, currency))
	fmt.Fprintf(&sb, "💸 Expenses: %s\n", money(s.TotalExpense, currency))
	fmt.Fprintf(&sb, "💵 Balance: %s\n", money(s.Balance, currency))

	if len(s.ExpenseByCategory) > 0 {
		sb.WriteString("\n<b>Top spending:</b>\n")
		top := s.ExpenseByCategory
		if len(top) > 5 {
			top = top[:5]
		}
		for _, ct := range top {
			fmt.Fprintf(&sb, "• %s: %s (%.1f%%)\n", ct.Name, money(ct.Amount, currency), ct.Share)
		}
	}
	return sb.String()
}

func money(amount decimal.Decimal, currency string) string {
	return currency + amount.StringFixed(2)
}
