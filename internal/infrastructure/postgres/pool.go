package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	auditMaxConns     = 4
	auditMinConns     = 1
	auditMaxConnLife  = 30 * time.Minute
	auditPingDeadline = 5 * time.Second
)

// NewPool opens a small pool for the audit trail and pings it
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse audit dsn: %w", err)
	}
	cfg.MaxConns = auditMaxConns
	cfg.MinConns = auditMinConns
	cfg.MaxConnLifetime = auditMaxConnLife
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, auditPingDeadline)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	return pool, nil
}
