// Package services orchestrates record writes across storage and change events.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Publisher announces successful writes. *amqp.Client implements it.
type Publisher interface {
	PublishChange(ctx context.Context, resource, id string, op amqp.Op) error
}

// RecordService is a store.Store that publishes a change event after every
// successful write. Publishing is best effort: the write is already durable.
type RecordService struct {
	store.Store
	publisher Publisher
}

var _ store.Store = (*RecordService)(nil)

// NewRecordService wraps s. A nil publisher disables change events.
func NewRecordService(s store.Store, publisher Publisher) *RecordService {
	return &RecordService{Store: s, publisher: publisher}
}

func (s *RecordService) CreateTransaction(ctx context.Context, kind core.Kind, f core.TransactionFields) (core.Transaction, error) {
	t, err := s.Store.CreateTransaction(ctx, kind, f)
	if err != nil {
		return t, fmt.Errorf("create %s: %w", kind, err)
	}
	s.publish(ctx, kind.Collection(), t.ID, amqp.OpCreated)
	return t, nil
}

func (s *RecordService) UpdateTransaction(ctx context.Context, kind core.Kind, id string, f core.TransactionFields) (core.Transaction, error) {
	t, err := s.Store.UpdateTransaction(ctx, kind, id, f)
	if err != nil {
		return t, fmt.Errorf("update %s: %w", kind, err)
	}
	s.publish(ctx, kind.Collection(), id, amqp.OpUpdated)
	return t, nil
}

func (s *RecordService) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	if err := s.Store.DeleteTransaction(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	s.publish(ctx, kind.Collection(), id, amqp.OpDeleted)
	return nil
}

func (s *RecordService) CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error) {
	b, err := s.Store.CreateBudget(ctx, f)
	if err != nil {
		return b, fmt.Errorf("create budget: %w", err)
	}
	s.publish(ctx, core.ResourceBudget, b.ID, amqp.OpCreated)
	return b, nil
}

func (s *RecordService) DeleteBudget(ctx context.Context, id string) error {
	if err := s.Store.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	s.publish(ctx, core.ResourceBudget, id, amqp.OpDeleted)
	return nil
}

func (s *RecordService) CreateSavings(ctx context.Context, f core.SavingsFields) (core.Savings, error) {
	v, err := s.Store.CreateSavings(ctx, f)
	if err != nil {
		return v, fmt.Errorf("create savings: %w", err)
	}
	s.publish(ctx, core.ResourceSavings, v.ID, amqp.OpCreated)
	return v, nil
}

func (s *RecordService) DeleteSavings(ctx context.Context, id string) error {
	if err := s.Store.DeleteSavings(ctx, id); err != nil {
		return fmt.Errorf("delete savings: %w", err)
	}
	s.publish(ctx, core.ResourceSavings, id, amqp.OpDeleted)
	return nil
}

func (s *RecordService) publish(ctx context.Context, resource, id string, op amqp.Op) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, resource, id, op); err != nil {
		// Don't fail the request - the record is already stored
		slog.ErrorContext(ctx, "Failed to publish change event",
			"resource", resource,
			"id", id,
			"op", op,
			"error", err)
	}
}

// Close closes the store and, when it has one, the publisher's connection.
func (s *RecordService) Close() error {
	var errs []error
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
