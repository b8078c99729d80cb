// Package repository defines the store adapter contract and its two
// implementations: a local SQLite database and a hosted Supabase backend.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okunev/financetracker/internal/model"
)

var (
	// ErrUnknownUser means the user has no registration row. Non-retryable;
	// the caller tells the user to /start first.
	ErrUnknownUser = errors.New("user is not registered")

	// ErrUnknownCategory means a transaction references a category that is
	// not in the catalog. Non-retryable.
	ErrUnknownCategory = errors.New("category not found in catalog")
)

// Repository is the store adapter. Implementations must not perform partial
// writes: CreateTransaction either persists a fully valid row or fails.
type Repository interface {
	// UpsertUser registers the user or refreshes the username.
	UpsertUser(ctx context.Context, user *model.User) error

	// CreateTransaction persists one transaction. Fails with
	// ErrUnknownUser or ErrUnknownCategory before writing anything.
	CreateTransaction(ctx context.Context, tx *model.Transaction) error

	// GetTransactions returns the user's transactions matching the filter,
	// newest first.
	GetTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]model.Transaction, error)

	// GetCategories returns the full catalog.
	GetCategories(ctx context.Context) ([]model.Category, error)

	// ResolveCategory finds a catalog entry by name (case-insensitive).
	// Fails with ErrUnknownCategory.
	ResolveCategory(ctx context.Context, name string) (model.Category, error)
}

// TransactionFilter bounds a transaction query.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Kind      string // expense, income, or empty for both
	Limit     int
}
