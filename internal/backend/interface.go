// Package backend builds the configured record store.
package backend

import (
	"context"

	"fintrack/internal/store"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

type BackendResult struct {
	Store   store.Store
	Cleanup CleanupFunc
}

type Factory interface {
	// CreateBackend opens the store named by config and wraps it so writes
	// publish change events when AMQP is configured.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string

	// Memory specific; budgets loaded at startup
	BudgetSeedFile string

	// Change events; empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
