package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
)

type PoolConfig struct {
	DSN            string
	MinConns       int
	MaxConns       int
	CommandTimeout time.Duration
}

// Pool owns the bounded database connection pool. Initialization failures
// are recorded instead of being swallowed so the retrieval facade can
// detect "primary unavailable" and route to the fallback path.
type Pool struct {
	cfg PoolConfig

	mu      sync.Mutex
	db      *sql.DB
	initErr error
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.MinConns <= 0 {
		cfg.MinConns = 1
	}
	if cfg.MaxConns < cfg.MinConns {
		cfg.MaxConns = cfg.MinConns
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 30 * time.Second
	}
	return &Pool{cfg: cfg}
}

// Initialize is idempotent: once the pool is up, repeat calls are no-ops.
// After a failed attempt the next call tries again.
func (p *Pool) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return nil
	}
	if p.cfg.DSN == "" {
		p.initErr = domain.WrapError(domain.ErrConfiguration, "initialize pool", fmt.Errorf("DATABASE_URL is not set"))
		return p.initErr
	}

	db, err := sql.Open("pgx", p.cfg.DSN)
	if err != nil {
		p.initErr = domain.WrapError(domain.ErrBackendUnavailable, "initialize pool", err)
		return p.initErr
	}
	db.SetMaxOpenConns(p.cfg.MaxConns)
	db.SetMaxIdleConns(p.cfg.MinConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, p.cfg.CommandTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		p.initErr = domain.WrapError(domain.ErrBackendUnavailable, "initialize pool", err)
		return p.initErr
	}

	p.db = db
	p.initErr = nil
	return nil
}

func (p *Pool) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db != nil
}

// InitErr reports the cause recorded by the last failed Initialize.
func (p *Pool) InitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initErr
}

func (p *Pool) DB() *sql.DB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db
}

// CommandScope bounds a single query by the configured command timeout.
// The returned cancel must run before the caller leaves the query scope so
// the connection always goes back to the pool.
func (p *Pool) CommandScope(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.cfg.CommandTimeout)
}

func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
