package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

func TestPoolWithoutDSNRecordsConfigurationError(t *testing.T) {
	pool := NewPool(PoolConfig{})

	err := pool.Initialize(context.Background())
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if pool.Available() {
		t.Fatalf("pool must not report available after failed init")
	}
	if pool.InitErr() == nil {
		t.Fatalf("expected recorded init error")
	}
}

func TestPoolDefaultsBounds(t *testing.T) {
	pool := NewPool(PoolConfig{MinConns: -1, MaxConns: 0})
	if pool.cfg.MinConns != 1 || pool.cfg.MaxConns != 1 {
		t.Fatalf("expected clamped bounds 1/1, got %d/%d", pool.cfg.MinConns, pool.cfg.MaxConns)
	}
	if pool.cfg.CommandTimeout != 30*time.Second {
		t.Fatalf("expected default command timeout, got %v", pool.cfg.CommandTimeout)
	}
}

func TestPoolCloseWithoutInitIsNoop(t *testing.T) {
	pool := NewPool(PoolConfig{DSN: "postgres://localhost/test"})
	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
