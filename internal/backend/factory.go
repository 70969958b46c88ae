package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pokerledger/internal/sheetdb"
	"pokerledger/internal/sheets"
	"pokerledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, backendType Type, config Config) (*Result, error) {
	switch backendType {
	case LocalBackend:
		return f.createLocalBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx)
	case SheetDBBackend:
		return f.createSheetDBBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}

// Select walks the configured fallback chain and returns the first backend
// that initializes. Every failed candidate is logged and skipped.
func Select(ctx context.Context, factory Factory, config Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var errs []error
	for _, t := range config.Types {
		result, err := factory.CreateBackend(ctx, t, config)
		if err != nil {
			logger.Warn("Backend unavailable, trying next in chain",
				"backend", t.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}
		logger.Info("Selected data backend", "backend", result.Backend.Name())
		return result, nil
	}
	return nil, fmt.Errorf("no usable backend in chain: %w", errors.Join(errs...))
}

func (f *DefaultFactory) createLocalBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized local backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context) (*Result, error) {
	cli, err := sheets.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")

	return &Result{
		Backend: cli,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createSheetDBBackend(config Config) (*Result, error) {
	cli, err := sheetdb.New(config.SheetDBAPIURL, config.SheetDBAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SheetDB client: %w", err)
	}

	f.logger.Info("Initialized SheetDB backend")

	return &Result{
		Backend: cli,
		Cleanup: nil,
	}, nil
}
