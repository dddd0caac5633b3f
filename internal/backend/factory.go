package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/storage/postgres"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

var _ Factory = (*DefaultFactory)(nil)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	base, err := f.OpenStore(ctx, config)
	if err != nil {
		return nil, err
	}

	// A nil *amqp.Client must not become a non-nil Publisher.
	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewRecordService(base, publisher)
	return &BackendResult{Store: svc, Cleanup: svc.Close}, nil
}

// OpenStore opens the bare store without change events.
func (f *DefaultFactory) OpenStore(ctx context.Context, config Config) (store.Store, error) {
	switch config.Type {
	case MemoryBackend:
		return f.createMemoryStore(ctx, config)
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	case PostgresBackend:
		repo, err := postgres.Open(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryStore(ctx context.Context, config Config) (store.Store, error) {
	s := memory.New()
	if config.BudgetSeedFile != "" {
		if err := s.SeedFile(ctx, config.BudgetSeedFile); err != nil {
			return nil, fmt.Errorf("seed memory backend: %w", err)
		}
	}
	f.logger.Info("Initialized memory backend", "seed_file", config.BudgetSeedFile)
	return s, nil
}
