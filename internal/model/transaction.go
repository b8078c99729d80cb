package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input methods recorded on a transaction.
const (
	InputManual  = "manual"
	InputReceipt = "receipt"
)

// Transaction is a single committed income or expense. Amount is always
// positive; Kind carries the direction. ChatID scopes group usage and is
// zero for direct chats.
type Transaction struct {
	ID          string          `json:"id,omitempty"`
	UserID      int64           `json:"user_id"`
	ChatID      int64           `json:"chat_id,omitempty"`
	CategoryID  string          `json:"category_id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	InputMethod string          `json:"input_method"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

// GenerateID assigns a new UUID unless one is already set.
func (t *Transaction) GenerateID() {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
}
