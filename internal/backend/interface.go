// Package backend selects and constructs the persistence backend the record
// store runs on.
package backend

import (
	"context"

	"pokerledger/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the backend instance and optional cleanup function
type Result struct {
	Backend store.Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance of the given type
	CreateBackend(ctx context.Context, backendType Type, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Ordered fallback chain, first entry preferred
	Types []Type

	// Local backend
	SQLiteDBPath string

	// SheetDB backend
	SheetDBAPIURL string
	SheetDBAPIKey string
}

// Type represents the kind of persistence backend
type Type string

const (
	LocalBackend   Type = "local"
	SheetsBackend  Type = "sheets"
	SheetDBBackend Type = "sheetdb"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case LocalBackend, SheetsBackend, SheetDBBackend:
		return true
	default:
		return false
	}
}
