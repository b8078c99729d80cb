// Package flow implements the per-user conversation state machine for
// transaction entry. A Machine owns the scratch state of one in-progress
// flow and nothing else: it never talks to the store or the chat platform,
// so the full transition graph is testable without either.
package flow

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okunev/financetracker/internal/model"
)

// Step is the current position of a flow.
type Step int

const (
	StepIdle Step = iota
	StepCategory
	StepAmount
	StepDescription
	// StepCommit means the draft is finalized and waiting for a confirmed
	// write. The machine stays here if persistence fails so the draft can
	// be retried; Commit is the only way out besides Cancel.
	StepCommit
	StepReceiptConfirm
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepCategory:
		return "awaiting_category"
	case StepAmount:
		return "awaiting_amount"
	case StepDescription:
		return "awaiting_description"
	case StepCommit:
		return "commit_pending"
	case StepReceiptConfirm:
		return "receipt_confirm"
	}
	return "unknown"
}

// DefaultDescription is substituted when the user skips the description step.
const DefaultDescription = "No description"

// FallbackCategory receives receipt drafts whose extracted category does not
// match the catalog.
const FallbackCategory = "Other Expenses"

// Key identifies one conversation. ChatID is zero in direct chats.
type Key struct {
	UserID int64
	ChatID int64
}

// Draft is the partially built transaction carried through a flow.
type Draft struct {
	Category    model.Category
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Kind        string
	Merchant    string
	Items       []string
	FromReceipt bool
}

// Receipt is a structured extraction handed to BeginReceipt. Zero-valued
// fields mean the extractor could not determine them.
type Receipt struct {
	Amount   decimal.Decimal
	Merchant string
	Category string
	Date     time.Time
	Items    []string
}

// Machine tracks one flow. Not safe for concurrent use; the Store hands out
// one machine per conversation key and updates for a key are handled one at
// a time.
type Machine struct {
	step    Step
	catalog []model.Category
	draft   Draft
}

func NewMachine() *Machine {
	return &Machine{step: StepIdle}
}

func (m *Machine) Step() Step { return m.step }

// Draft exposes the current scratch state, mainly for commit retries.
func (m *Machine) Draft() Draft { return m.draft }

// Start begins a manual entry flow. An already active flow is discarded:
// starting over is the documented way to abandon a half-finished entry.
func (m *Machine) Start(catalog []model.Category) {
	m.reset()
	m.catalog = catalog
	m.step = StepCategory
}

// SelectCategory stores the chosen category and advances to the amount step.
// The choice is validated against the catalog snapshot taken at Start, not
// against the raw callback payload.
func (m *Machine) SelectCategory(id string) (model.Category, error) {
	if m.step != StepCategory {
		return model.Category{}, ErrOutOfSequence
	}
	for _, c := range m.catalog {
		if c.ID == id {
			m.draft.Category = c
			m.draft.Kind = c.Kind
			m.step = StepAmount
			return c, nil
		}
	}
	return model.Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, id)
}

// SubmitAmount parses raw as a positive decimal. On failure the step does
// not advance and the caller re-prompts.
func (m *Machine) SubmitAmount(raw string) (decimal.Decimal, error) {
	if m.step != StepAmount {
		return decimal.Decimal{}, ErrOutOfSequence
	}
	amount, err := ParseAmount(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	m.draft.Amount = amount
	m.step = StepDescription
	return amount, nil
}

// SubmitDescription finalizes the draft and moves to the commit-pending
// state. Blank text falls back to the skip placeholder.
func (m *Machine) SubmitDescription(text string) (Draft, error) {
	if m.step != StepDescription {
		return Draft{}, ErrOutOfSequence
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = DefaultDescription
	}
	m.draft.Description = text
	m.draft.Date = today()
	m.step = StepCommit
	return m.draft, nil
}

// SkipDescription finalizes the draft with the placeholder description.
func (m *Machine) SkipDescription() (Draft, error) {
	return m.SubmitDescription("")
}

// BeginReceipt starts the receipt-confirmation branch from idle. The
// extracted category is mapped into the catalog, falling back to
// FallbackCategory; a missing or non-positive amount fails validation
// because there is nothing sensible to confirm.
func (m *Machine) BeginReceipt(r Receipt, catalog []model.Category) (Draft, error) {
	if m.step != StepIdle {
		return Draft{}, ErrOutOfSequence
	}
	if !r.Amount.IsPositive() {
		return Draft{}, fmt.Errorf("%w: receipt total missing or not positive", ErrValidation)
	}

	category, ok := matchExpenseCategory(catalog, r.Category)
	if !ok {
		return Draft{}, fmt.Errorf("%w: no expense category to map %q onto", ErrUnknownCategory, r.Category)
	}

	date := r.Date
	if date.IsZero() {
		date = today()
	}

	m.reset()
	m.draft = Draft{
		Category:    category,
		Amount:      r.Amount,
		Description: receiptDescription(r),
		Date:        date,
		Kind:        model.KindExpense,
		Merchant:    r.Merchant,
		Items:       r.Items,
		FromReceipt: true,
	}
	m.step = StepReceiptConfirm
	return m.draft, nil
}

// ConfirmReceipt finalizes the receipt draft and moves to commit-pending.
func (m *Machine) ConfirmReceipt() (Draft, error) {
	if m.step != StepReceiptConfirm {
		return Draft{}, ErrOutOfSequence
	}
	m.step = StepCommit
	return m.draft, nil
}

// CancelReceipt discards the pending receipt draft.
func (m *Machine) CancelReceipt() error {
	if m.step != StepReceiptConfirm {
		return ErrOutOfSequence
	}
	m.reset()
	return nil
}

// Commit is the terminal transition. It must only be called after the store
// confirmed the write; a failed write leaves the machine in StepCommit with
// the finalized draft intact.
func (m *Machine) Commit() error {
	if m.step != StepCommit {
		return ErrOutOfSequence
	}
	m.reset()
	return nil
}

// Cancel abandons whatever flow is active. Reports whether there was one.
func (m *Machine) Cancel() bool {
	active := m.step != StepIdle
	m.reset()
	return active
}

func (m *Machine) reset() {
	m.step = StepIdle
	m.catalog = nil
	m.draft = Draft{}
}

// ParseAmount parses user input as a positive decimal amount. A decimal
// comma is accepted alongside the dot.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, ",", ".")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrValidation, raw)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	return amount, nil
}

func matchExpenseCategory(catalog []model.Category, name string) (model.Category, bool) {
	var fallback model.Category
	var haveFallback bool
	for _, c := range catalog {
		if c.Kind != model.KindExpense {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
		if strings.EqualFold(c.Name, FallbackCategory) {
			fallback = c
			haveFallback = true
		}
	}
	return fallback, haveFallback
}

func receiptDescription(r Receipt) string {
	merchant := strings.TrimSpace(r.Merchant)
	if merchant == "" {
		merchant = "Receipt"
	}
	items := r.Items
	if len(items) > 2 {
		items = items[:2]
	}
	if len(items) == 0 {
		return merchant
	}
	return merchant + " - " + strings.Join(items, ", ")
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
