package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/store/memory"
)

type event struct {
	resource, id string
	op           amqp.Op
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event
	err    error
	closed bool
}

func (p *fakePublisher) PublishChange(_ context.Context, resource, id string, op amqp.Op) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{resource, id, op})
	return p.err
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func strp(s string) *string { return &s }

func moneyp(c int64) *core.Money {
	m := core.Cents(c)
	return &m
}

func expenseFields() core.TransactionFields {
	return core.TransactionFields{Description: strp("Lunch"), Amount: moneyp(1200), Date: strp("2024-05-01"), Category: strp("Food")}
}

func TestRecordService_PublishesAfterWrites(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewRecordService(memory.New(), pub)

	tx, err := svc.CreateTransaction(ctx, core.KindExpense, expenseFields())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateTransaction(ctx, core.KindExpense, tx.ID, expenseFields()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, core.KindExpense, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	b, err := svc.CreateBudget(ctx, core.BudgetFields{Category: strp("Food"), Limit: moneyp(1000)})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if err := svc.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatalf("delete budget: %v", err)
	}
	v, err := svc.CreateSavings(ctx, core.SavingsFields{Amount: moneyp(1), Date: strp("2024-05-01"), Description: strp("x")})
	if err != nil {
		t.Fatalf("create savings: %v", err)
	}
	if err := svc.DeleteSavings(ctx, v.ID); err != nil {
		t.Fatalf("delete savings: %v", err)
	}

	want := []event{
		{"expense", tx.ID, amqp.OpCreated},
		{"expense", tx.ID, amqp.OpUpdated},
		{"expense", tx.ID, amqp.OpDeleted},
		{"budget", b.ID, amqp.OpCreated},
		{"budget", b.ID, amqp.OpDeleted},
		{"savings", v.ID, amqp.OpCreated},
		{"savings", v.ID, amqp.OpDeleted},
	}
	if len(pub.events) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(pub.events), len(want), pub.events)
	}
	for i := range want {
		if pub.events[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, pub.events[i], want[i])
		}
	}
}

func TestRecordService_NoEventOnFailure(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewRecordService(memory.New(), pub)

	_, err := svc.CreateTransaction(ctx, core.KindIncome, core.TransactionFields{})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if err := svc.DeleteBudget(ctx, core.NewID()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("unexpected events: %v", pub.events)
	}
}

func TestRecordService_PublishErrorDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("connection refused")}
	s := memory.New()
	svc := NewRecordService(s, pub)

	if _, err := svc.CreateTransaction(ctx, core.KindExpense, expenseFields()); err != nil {
		t.Fatalf("create should succeed despite publish error: %v", err)
	}
	list, _ := s.ListTransactions(ctx, core.KindExpense)
	if len(list) != 1 {
		t.Fatalf("record not stored: %v", list)
	}
}

func TestRecordService_NilPublisher(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)
	if _, err := svc.CreateTransaction(context.Background(), core.KindExpense, expenseFields()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRecordService_Close(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewRecordService(memory.New(), pub)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Error("publisher should be closed")
	}
}
