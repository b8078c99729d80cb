package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/okunev/financetracker/internal/model"
)

const (
	sqliteDateLayout = "2006-01-02"
	sqliteTimeLayout = time.RFC3339
)

// SQLiteRepository is the local embedded backend.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) UpsertUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username`,
		user.ID, user.Username, user.CreatedAt.Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	var exists int
	err = dbtx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, tx.UserID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownUser
	}
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}

	err = dbtx.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ?`, tx.CategoryID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownCategory
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}

	tx.GenerateID()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	_, err = dbtx.ExecContext(ctx, `
		INSERT INTO transactions
			(id, user_id, chat_id, category_id, kind, amount, currency, description, date, input_method, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.ChatID, tx.CategoryID, tx.Kind, tx.Amount.String(),
		tx.Currency, tx.Description, tx.Date.Format(sqliteDateLayout),
		tx.InputMethod, tx.CreatedAt.Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]model.Transaction, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, user_id, chat_id, category_id, kind, amount, currency, description, date, input_method, created_at
		FROM transactions WHERE user_id = ?`)
	args := []any{userID}

	if filter.StartDate != nil {
		query.WriteString(` AND date >= ?`)
		args = append(args, filter.StartDate.Format(sqliteDateLayout))
	}
	if filter.EndDate != nil {
		query.WriteString(` AND date <= ?`)
		args = append(args, filter.EndDate.Format(sqliteDateLayout))
	}
	if filter.Kind != "" {
		query.WriteString(` AND kind = ?`)
		args = append(args, filter.Kind)
	}
	query.WriteString(` ORDER BY date DESC, created_at DESC`)
	if filter.Limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var result []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) GetCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, kind, icon FROM categories ORDER BY kind, name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var result []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) ResolveCategory(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, icon FROM categories WHERE name = ? COLLATE NOCASE`, name).
		Scan(&c.ID, &c.Name, &c.Kind, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("resolve category: %w", err)
	}
	return c, nil
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var tx model.Transaction
	var amount, date, createdAt string
	err := rows.Scan(&tx.ID, &tx.UserID, &tx.ChatID, &tx.CategoryID, &tx.Kind,
		&amount, &tx.Currency, &tx.Description, &date, &tx.InputMethod, &createdAt)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	tx.Date, err = time.Parse(sqliteDateLayout, date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	tx.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parse stored timestamp %q: %w", createdAt, err)
	}
	return tx, nil
}
