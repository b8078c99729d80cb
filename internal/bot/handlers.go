package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/okunev/financetracker/internal/flow"
	"github.com/okunev/financetracker/internal/model"
	"github.com/okunev/financetracker/internal/report"
	"github.com/okunev/financetracker/internal/repository"
)

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "add_transaction", "add":
		b.handleAdd(message)
	case "recent":
		b.handleRecent(message)
	case "weekly_summary", "summary":
		b.handleSummary(message)
	case "export":
		b.handleExport(message)
	case "skip":
		b.handleSkip(message)
	case "cancel":
		b.handleCancel(message)
	default:
		b.reply(message.Chat.ID, "Unknown command. Send /start to see what I can do.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	user := &model.User{ID: message.From.ID, Username: message.From.UserName}
	if err := b.repo.UpsertUser(context.Background(), user); err != nil {
		b.logger.Error("upsert user failed", "user_id", user.ID, "error", err)
		b.reply(message.Chat.ID, "❌ Could not register you right now. Please try again.")
		return
	}
	b.reply(message.Chat.ID, welcomeText(message.From.UserName))
}

func (b *Bot) handleAdd(message *tgbotapi.Message) {
	catalog, err := b.repo.GetCategories(context.Background())
	if err != nil {
		b.logger.Error("load catalog failed", "error", err)
		b.reply(message.Chat.ID, "❌ Could not load categories. Please try again.")
		return
	}
	if len(catalog) == 0 {
		b.reply(message.Chat.ID, "❌ The category catalog is empty.")
		return
	}

	key := conversationKey(message.From.ID, message.Chat.ID)
	// Starting over discards any half-finished flow for this conversation.
	b.flows.Get(key).Start(catalog)

	msg := tgbotapi.NewMessage(message.Chat.ID, "💵 Adding a transaction. Please select a category:")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = categoriesKeyboard(catalog)
	b.send(msg)
}

func (b *Bot) handleText(message *tgbotapi.Message) {
	key := conversationKey(message.From.ID, message.Chat.ID)
	m, ok := b.flows.Peek(key)
	if !ok {
		b.reply(message.Chat.ID, "Send /add_transaction to record something, or /start for the full command list.")
		return
	}

	switch m.Step() {
	case flow.StepCategory:
		b.reply(message.Chat.ID, "Please pick a category from the buttons above, or /cancel.")
	case flow.StepAmount:
		amount, err := m.SubmitAmount(message.Text)
		if err != nil {
			b.reply(message.Chat.ID, "❌ Invalid amount. Please enter a positive number, e.g. 12.50")
			return
		}
		b.reply(message.Chat.ID, promptDescription(amount, b.currency))
	case flow.StepDescription:
		draft, err := m.SubmitDescription(message.Text)
		if err != nil {
			b.reply(message.Chat.ID, "Please finish the current step or /cancel.")
			return
		}
		b.commitDraft(key, m, draft, message.From.ID, message.Chat.ID)
	case flow.StepCommit:
		// The draft is finalized but the last write failed; any message
		// retries it.
		b.commitDraft(key, m, m.Draft(), message.From.ID, message.Chat.ID)
	case flow.StepReceiptConfirm:
		b.reply(message.Chat.ID, "Please confirm or cancel the receipt above first.")
	default:
		b.reply(message.Chat.ID, "Send /add_transaction to record something, or /start for the full command list.")
	}
}

func (b *Bot) handleSkip(message *tgbotapi.Message) {
	key := conversationKey(message.From.ID, message.Chat.ID)
	m, ok := b.flows.Peek(key)
	if !ok {
		return
	}
	draft, err := m.SkipDescription()
	if err != nil {
		// /skip outside the description step is stray input.
		return
	}
	b.commitDraft(key, m, draft, message.From.ID, message.Chat.ID)
}

func (b *Bot) handleCancel(message *tgbotapi.Message) {
	key := conversationKey(message.From.ID, message.Chat.ID)
	if m, ok := b.flows.Peek(key); ok && m.Cancel() {
		b.flows.Evict(key)
		b.reply(message.Chat.ID, "Flow cancelled. Nothing was saved.")
		return
	}
	b.reply(message.Chat.ID, "Nothing to cancel.")
}

// commitDraft persists a finalized draft. The machine reaches its terminal
// state only after the store confirms the write; on a store failure the
// draft stays put so the user can retry or cancel.
func (b *Bot) commitDraft(key flow.Key, m *flow.Machine, draft flow.Draft, userID, chatID int64) {
	input := model.InputManual
	if draft.FromReceipt {
		input = model.InputReceipt
	}
	tx := &model.Transaction{
		UserID:      userID,
		ChatID:      key.ChatID,
		CategoryID:  draft.Category.ID,
		Kind:        draft.Kind,
		Amount:      draft.Amount,
		Currency:    b.currency,
		Description: draft.Description,
		Date:        draft.Date,
		InputMethod: input,
	}

	err := b.repo.CreateTransaction(context.Background(), tx)
	switch {
	case err == nil:
		if err := m.Commit(); err != nil {
			b.logger.Warn("commit after write", "error", err)
		}
		b.flows.Evict(key)
		b.reply(chatID, committedText(draft, b.currency))
	case errors.Is(err, repository.ErrUnknownUser):
		m.Cancel()
		b.flows.Evict(key)
		b.reply(chatID, "❌ You're not registered yet. Send /start first, then try again.")
	case errors.Is(err, repository.ErrUnknownCategory):
		m.Cancel()
		b.flows.Evict(key)
		b.reply(chatID, "❌ That category is no longer available. Start over with /add_transaction.")
	default:
		b.logger.Error("persist transaction failed", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Could not save the transaction. Send any message to retry, or /cancel to discard it.")
	}
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	// Always answer so the client drops its loading indicator.
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			b.logger.Warn("answer callback failed", "error", err)
		}
	}()

	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	key := conversationKey(callback.From.ID, chatID)

	switch {
	case strings.HasPrefix(callback.Data, "category_"):
		b.handleCategoryChoice(callback, key, strings.TrimPrefix(callback.Data, "category_"))
	case callback.Data == "receipt_save":
		b.handleReceiptSave(callback, key)
	case callback.Data == "receipt_cancel":
		b.handleReceiptCancel(callback, key)
	}
}

func (b *Bot) handleCategoryChoice(callback *tgbotapi.CallbackQuery, key flow.Key, categoryID string) {
	chatID := callback.Message.Chat.ID
	m, ok := b.flows.Peek(key)
	if !ok {
		// A button from a finished or discarded flow: ignore.
		return
	}

	category, err := m.SelectCategory(categoryID)
	switch {
	case errors.Is(err, flow.ErrOutOfSequence):
		b.logger.Debug("stray category callback", "user_id", key.UserID, "step", m.Step().String())
		return
	case errors.Is(err, flow.ErrUnknownCategory):
		b.reply(chatID, "❌ That category is not in the catalog. Please pick one of the buttons.")
		return
	case err != nil:
		b.logger.Error("select category failed", "error", err)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID,
		fmt.Sprintf("Category selected: <b>%s</b>\n\n💵 Please enter the amount:", category.Name))
	edit.ParseMode = tgbotapi.ModeHTML
	b.send(edit)
}

func (b *Bot) handleReceiptSave(callback *tgbotapi.CallbackQuery, key flow.Key) {
	chatID := callback.Message.Chat.ID
	m, ok := b.flows.Peek(key)
	if !ok {
		return
	}
	draft, err := m.ConfirmReceipt()
	if err != nil {
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID, "💾 Saving receipt transaction...")
	b.send(edit)
	b.commitDraft(key, m, draft, callback.From.ID, chatID)
}

func (b *Bot) handleReceiptCancel(callback *tgbotapi.CallbackQuery, key flow.Key) {
	chatID := callback.Message.Chat.ID
	m, ok := b.flows.Peek(key)
	if !ok {
		return
	}
	if err := m.CancelReceipt(); err != nil {
		return
	}
	b.flows.Evict(key)
	edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID, "❌ Receipt discarded. Nothing was saved.")
	b.send(edit)
}

func (b *Bot) handlePhoto(message *tgbotapi.Message) {
	if b.extractor == nil {
		b.reply(message.Chat.ID, "📸 Receipt recognition is not configured on this bot.")
		return
	}

	key := conversationKey(message.From.ID, message.Chat.ID)
	b.reply(message.Chat.ID, "📸 Processing your receipt... This may take a moment.")

	image, err := b.downloadPhoto(message)
	if err != nil {
		b.logger.Error("photo download failed", "error", err)
		b.reply(message.Chat.ID, "❌ Could not download the photo. Please resend it.")
		return
	}

	catalog, err := b.repo.GetCategories(context.Background())
	if err != nil {
		b.logger.Error("load catalog failed", "error", err)
		b.reply(message.Chat.ID, "❌ Could not load categories. Please try again.")
		return
	}

	extraction, err := b.extractor.Extract(context.Background(), image, expenseCategoryNames(catalog))
	if err != nil {
		b.logger.Warn("extraction failed", "user_id", message.From.ID, "error", err)
		b.reply(message.Chat.ID, fmt.Sprintf("❌ Error processing receipt: %v", err))
		return
	}

	receipt := flow.Receipt{
		Merchant: extraction.Merchant,
		Category: extraction.Category,
		Date:     extraction.ParsedDate(),
		Items:    extraction.Items,
	}
	if extraction.Amount != nil {
		receipt.Amount = *extraction.Amount
	}

	m := b.flows.Get(key)
	draft, err := m.BeginReceipt(receipt, catalog)
	switch {
	case errors.Is(err, flow.ErrOutOfSequence):
		b.reply(message.Chat.ID, "You have a transaction in progress. Finish it or /cancel before sending a receipt.")
		return
	case errors.Is(err, flow.ErrValidation):
		b.reply(message.Chat.ID, "❌ Could not read a total amount from this receipt. Please add it manually with /add_transaction.")
		return
	case err != nil:
		b.logger.Error("begin receipt failed", "error", err)
		b.reply(message.Chat.ID, "❌ Error processing receipt. Please try again.")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, receiptConfirmText(draft, b.currency))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = receiptKeyboard()
	b.send(msg)
}

func (b *Bot) downloadPhoto(message *tgbotapi.Message) ([]byte, error) {
	// Sizes arrive smallest first; take the highest resolution.
	largest := message.Photo[len(message.Photo)-1]
	url, err := b.api.GetFileDirectURL(largest.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	resp, err := b.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetch file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

func (b *Bot) handleRecent(message *tgbotapi.Message) {
	window := report.LastDays(recentDays, time.Now())
	transactions, names, err := b.loadWindow(message.From.ID, window, recentLimit)
	if err != nil {
		b.logger.Error("recent query failed", "error", err)
		b.reply(message.Chat.ID, "❌ Could not load transactions. Please try again.")
		return
	}
	if len(transactions) == 0 {
		b.reply(message.Chat.ID, "📋 No recent transactions found.")
		return
	}
	b.reply(message.Chat.ID, recentText(transactions, names, b.currency))
}

func (b *Bot) handleSummary(message *tgbotapi.Message) {
	window := report.LastDays(summaryDays, time.Now())
	transactions, names, err := b.loadWindow(message.From.ID, window, exportLimit)
	if err != nil {
		b.logger.Error("summary query failed", "error", err)
		b.reply(message.Chat.ID, "❌ Could not build the summary. Please try again.")
		return
	}

	summary := report.Build(transactions, names, window)
	if summary.Empty {
		b.reply(message.Chat.ID, "📊 No data for the last week yet. Add a few transactions first.")
		return
	}

	caption := summaryCaption(summary, b.currency)

	trend, err := b.charts.TrendChart(summary, b.currency)
	if err != nil {
		b.logger.Warn("trend chart failed", "error", err)
	}
	pie, err := b.charts.CategoryPie(summary)
	if err != nil {
		b.logger.Warn("category pie failed", "error", err)
	}

	if trend != nil {
		photo := tgbotapi.NewPhoto(message.Chat.ID, tgbotapi.FileBytes{Name: "trend.png", Bytes: trend})
		b.send(photo)
	}
	if pie != nil {
		photo := tgbotapi.NewPhoto(message.Chat.ID, tgbotapi.FileBytes{Name: "categories.png", Bytes: pie})
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeHTML
		b.send(photo)
		return
	}
	b.reply(message.Chat.ID, caption)
}

func (b *Bot) handleExport(message *tgbotapi.Message) {
	window := report.LastDays(exportDays, time.Now())
	transactions, names, err := b.loadWindow(message.From.ID, window, exportLimit)
	if err != nil {
		b.logger.Error("export query failed", "error", err)
		b.reply(message.Chat.ID, "❌ Could not export transactions. Please try again.")
		return
	}
	if len(transactions) == 0 {
		b.reply(message.Chat.ID, "📊 No transactions to export.")
		return
	}

	data, err := report.ExportCSV(transactions, names)
	if err != nil {
		b.logger.Error("csv export failed", "error", err)
		b.reply(message.Chat.ID, "❌ Could not build the CSV export.")
		return
	}

	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{
		Name:  report.ExportFilename(message.From.ID, time.Now()),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("📊 Your transaction export (%d records)", len(transactions))
	b.send(doc)
}

// loadWindow fetches a user's transactions for a window plus the category
// name map the renderers need.
func (b *Bot) loadWindow(userID int64, window report.Window, limit int) ([]model.Transaction, map[string]string, error) {
	ctx := context.Background()
	filter := repository.TransactionFilter{
		StartDate: &window.Start,
		EndDate:   &window.End,
		Limit:     limit,
	}
	transactions, err := b.repo.GetTransactions(ctx, userID, filter)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := b.repo.GetCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]string, len(catalog))
	for _, c := range catalog {
		names[c.ID] = c.Name
	}
	return transactions, names, nil
}

func expenseCategoryNames(catalog []model.Category) []string {
	var names []string
	for _, c := range catalog {
		if c.Kind == model.KindExpense {
			names = append(names, c.Name)
		}
	}
	return names
}
