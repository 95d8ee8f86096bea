// Package backend assembles the month store selected by DATA_BACKEND.
package backend

import (
	"context"
	"time"

	"feedtrend/internal/cache"
	"feedtrend/internal/core"
	"feedtrend/internal/months"
	"feedtrend/internal/services"
)

type CleanupFunc func() error

// BackendResult is an assembled backend. Publisher is nil when AMQP is
// disabled and Cache is nil when caching is off.
type BackendResult struct {
	Store     months.Store
	Publisher services.EventPublisher
	Cache     *cache.LRUCache[core.RecordSet]
	Cleanup   CleanupFunc
}

// Close runs Cleanup if set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	DataDirectory string
	SQLiteDBPath  string
	TextColumn    string

	// CacheSize 0 disables the read-through cache
	CacheSize int
	CacheTTL  time.Duration

	// Empty AMQPURL disables event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
