// Package memory is an in-process store used for development and tests.
package memory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"fintrack/internal/core"
)

type Store struct {
	mu      sync.Mutex
	txs     map[core.Kind][]core.Transaction
	budgets []core.Budget
	savings []core.Savings
}

func New() *Store {
	return &Store{txs: make(map[core.Kind][]core.Transaction)}
}

func (s *Store) ListTransactions(_ context.Context, kind core.Kind) ([]core.Transaction, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.txs[kind]...), nil
}

func (s *Store) CreateTransaction(_ context.Context, kind core.Kind, f core.TransactionFields) (core.Transaction, error) {
	if !kind.Valid() {
		return core.Transaction{}, fmt.Errorf("unknown kind %q", kind)
	}
	if err := f.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := f.Transaction(core.NewID())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[kind] = append(s.txs[kind], t)
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, kind core.Kind, id string, f core.TransactionFields) (core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.txs[kind]
	for i := range items {
		if items[i].ID == id {
			items[i] = f.Transaction(id)
			return items[i], nil
		}
	}
	return core.Transaction{}, fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
}

func (s *Store) DeleteTransaction(_ context.Context, kind core.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := remove(s.txs[kind], func(t core.Transaction) bool { return t.ID == id })
	if !ok {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	s.txs[kind] = items
	return nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget{}, s.budgets...), nil
}

func (s *Store) CreateBudget(_ context.Context, f core.BudgetFields) (core.Budget, error) {
	if err := f.Validate(); err != nil {
		return core.Budget{}, err
	}
	b := f.Budget(core.NewID())
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.budgets {
		if existing.Category == b.Category {
			return core.Budget{}, fmt.Errorf("budget %q: %w", b.Category, core.ErrDuplicate)
		}
	}
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := remove(s.budgets, func(b core.Budget) bool { return b.ID == id })
	if !ok {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	s.budgets = items
	return nil
}

func (s *Store) ListSavings(_ context.Context) ([]core.Savings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Savings{}, s.savings...), nil
}

func (s *Store) CreateSavings(_ context.Context, f core.SavingsFields) (core.Savings, error) {
	if err := f.Validate(); err != nil {
		return core.Savings{}, err
	}
	v := f.Savings(core.NewID())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savings = append(s.savings, v)
	return v, nil
}

func (s *Store) DeleteSavings(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := remove(s.savings, func(v core.Savings) bool { return v.ID == id })
	if !ok {
		return fmt.Errorf("savings %s: %w", id, core.ErrNotFound)
	}
	s.savings = items
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Seed loads budgets from "Category=limit" lines, skipping blanks and comments.
// Existing categories are left as they are.
func (s *Store) Seed(ctx context.Context, lines []string) error {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		category, raw, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("seed line %q: missing '='", line)
		}
		limit, err := core.ParseAmount(raw)
		if err != nil {
			return fmt.Errorf("seed line %q: %w", line, err)
		}
		category = strings.TrimSpace(category)
		_, err = s.CreateBudget(ctx, core.BudgetFields{Category: &category, Limit: &limit})
		if err != nil && !errors.Is(err, core.ErrDuplicate) {
			return err
		}
	}
	return nil
}

// SeedFile reads seed lines from path. A missing file is not an error.
func (s *Store) SeedFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	return s.Seed(ctx, lines)
}

// remove drops the first element matching fn, preserving order.
func remove[T any](items []T, fn func(T) bool) ([]T, bool) {
	for i := range items {
		if fn(items[i]) {
			return append(items[:i:i], items[i+1:]...), true
		}
	}
	return items, false
}
