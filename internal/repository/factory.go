package repository

import (
	"fmt"

	"github.com/okunev/financetracker/internal/config"
)

// New builds the repository selected by the configuration and returns it
// with a close function for whatever resources it holds.
func New(cfg *config.Config) (Repository, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		repo, err := NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.BackendSupabase:
		repo, err := NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
