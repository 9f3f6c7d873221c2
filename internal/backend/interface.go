package backend

import (
	"context"
	"time"

	"expensetracker/internal/ledger"
	"expensetracker/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds what a binary needs to serve requests. Store is the
// same instance the service wraps; readers that must bypass the service
// cache (the chart worker) use it directly.
type BackendResult struct {
	Service *services.TransactionService
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Events are published only when PublishEvents is set and AMQPURL is
	// non-empty.
	PublishEvents bool
	AMQPURL       string
	AMQPExchange  string
	AMQPQueue     string

	CacheTTL time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
