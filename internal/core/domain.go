package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Resource names shared by routes, tables, change events and mirror sheets.
const (
	ResourceExpense = "expense"
	ResourceIncome  = "income"
	ResourceBudget  = "budget"
	ResourceSavings = "savings"
)

// Resources lists every collection in display order.
var Resources = []string{ResourceExpense, ResourceIncome, ResourceBudget, ResourceSavings}

type (
	// Kind selects one of the two transaction collections.
	Kind string

	// Transaction is an Expense or Income record. Date is kept as the client sent it.
	Transaction struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Date        string `json:"date"`
		Category    string `json:"category"`
	}

	// Budget is a spending limit for one category. Category is unique per store.
	Budget struct {
		ID       string `json:"id"`
		Category string `json:"category"`
		Limit    Money  `json:"limit"`
	}

	Savings struct {
		ID          string `json:"id"`
		Amount      Money  `json:"amount"`
		Date        string `json:"date"`
		Description string `json:"description"`
	}
)

// Field sets decoded from request bodies. A nil pointer means the field was absent.
type (
	TransactionFields struct {
		Description *string `json:"description"`
		Amount      *Money  `json:"amount"`
		Date        *string `json:"date"`
		Category    *string `json:"category"`
	}

	BudgetFields struct {
		Category *string `json:"category"`
		Limit    *Money  `json:"limit"`
	}

	SavingsFields struct {
		Amount      *Money  `json:"amount"`
		Date        *string `json:"date"`
		Description *string `json:"description"`
	}
)

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidID  = errors.New("invalid id format")
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("duplicate record")
)

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Collection returns the resource name used in routes, tables and events.
func (k Kind) Collection() string {
	return string(k)
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// ParseID normalises a client-supplied identifier. Malformed values wrap ErrInvalidID.
func ParseID(s string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return u.String(), nil
}

func missing(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func (f TransactionFields) Validate() error {
	switch {
	case missing(f.Description):
		return fmt.Errorf("%w: description is required", ErrValidation)
	case f.Amount == nil:
		return fmt.Errorf("%w: amount is required", ErrValidation)
	case missing(f.Date):
		return fmt.Errorf("%w: date is required", ErrValidation)
	case missing(f.Category):
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if f.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	return nil
}

// Transaction builds the record stored under id. Call Validate first.
func (f TransactionFields) Transaction(id string) Transaction {
	return Transaction{
		ID:          id,
		Description: *f.Description,
		Amount:      *f.Amount,
		Date:        *f.Date,
		Category:    *f.Category,
	}
}

func (f BudgetFields) Validate() error {
	if missing(f.Category) {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if f.Limit == nil {
		return fmt.Errorf("%w: limit is required", ErrValidation)
	}
	if f.Limit.Cents <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrValidation)
	}
	return nil
}

func (f BudgetFields) Budget(id string) Budget {
	return Budget{ID: id, Category: *f.Category, Limit: *f.Limit}
}

func (f SavingsFields) Validate() error {
	switch {
	case f.Amount == nil:
		return fmt.Errorf("%w: amount is required", ErrValidation)
	case missing(f.Date):
		return fmt.Errorf("%w: date is required", ErrValidation)
	case missing(f.Description):
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if f.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	return nil
}

func (f SavingsFields) Savings(id string) Savings {
	return Savings{ID: id, Amount: *f.Amount, Date: *f.Date, Description: *f.Description}
}
