package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/supabase-go"

	"github.com/okunev/financetracker/internal/model"
)

// SupabaseRepository is the hosted backend, talking PostgREST to the
// users/categories/transactions tables.
type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseRepository{client: client}, nil
}

func (r *SupabaseRepository) UpsertUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, _, err := r.client.From("users").Insert(user, true, "id", "", "").Execute()
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	// PostgREST has no transactional check-then-insert, so both lookups run
	// before the write; the FK constraints remain the backstop.
	if err := r.userExists(tx.UserID); err != nil {
		return err
	}
	if err := r.categoryExists(tx.CategoryID); err != nil {
		return err
	}

	tx.GenerateID()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	data, _, err := r.client.From("transactions").Insert(tx, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	var created []model.Transaction
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("parse created transaction: %w", err)
	}
	if len(created) > 0 {
		tx.ID = created[0].ID
		tx.CreatedAt = created[0].CreatedAt
	}
	return nil
}

func (r *SupabaseRepository) GetTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]model.Transaction, error) {
	query := r.client.From("transactions").
		Select("*", "", false).
		Eq("user_id", strconv.FormatInt(userID, 10))

	if filter.StartDate != nil {
		query = query.Gte("date", filter.StartDate.Format("2006-01-02"))
	}
	if filter.EndDate != nil {
		query = query.Lte("date", filter.EndDate.Format("2006-01-02"))
	}
	if filter.Kind != "" {
		query = query.Eq("kind", filter.Kind)
	}

	query = query.Order("date.desc", nil)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	var transactions []model.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("parse transactions: %w", err)
	}
	return transactions, nil
}

func (r *SupabaseRepository) GetCategories(ctx context.Context) ([]model.Category, error) {
	data, _, err := r.client.From("categories").
		Select("*", "", false).
		Order("kind", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	var categories []model.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	return categories, nil
}

func (r *SupabaseRepository) ResolveCategory(ctx context.Context, name string) (model.Category, error) {
	// The catalog is a handful of rows; scanning it keeps the name match
	// case-insensitive without leaning on PostgREST operators.
	categories, err := r.GetCategories(ctx)
	if err != nil {
		return model.Category{}, err
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return model.Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

func (r *SupabaseRepository) userExists(userID int64) error {
	data, _, err := r.client.From("users").
		Select("id", "", false).
		Eq("id", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parse user row: %w", err)
	}
	if len(rows) == 0 {
		return ErrUnknownUser
	}
	return nil
}

func (r *SupabaseRepository) categoryExists(categoryID string) error {
	data, _, err := r.client.From("categories").
		Select("id", "", false).
		Eq("id", categoryID).
		Execute()
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parse category row: %w", err)
	}
	if len(rows) == 0 {
		return ErrUnknownCategory
	}
	return nil
}
