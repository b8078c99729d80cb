package model

import "time"

const (
	KindExpense = "expense"
	KindIncome  = "income"
)

// Category is one entry of the seeded, immutable catalog.
type Category struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"` // expense or income
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
