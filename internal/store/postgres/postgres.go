// Package postgres implements the store interfaces on PostgreSQL via pgx.
// Conditional creates use INSERT ... ON CONFLICT DO NOTHING; optimistic
// updates are guarded on updated_at.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moneymap/backend/internal/model"
)

//go:embed schema.sql
var schema string

// Connect builds a pool with decimal codec support registered on every
// connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return pool, nil
}

// InitSchema creates the tables and indexes if they do not exist yet.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// boolPtr maps a TriState onto a nullable boolean column.
func boolPtr(t model.TriState) *bool {
	switch t {
	case model.TriStateTrue:
		v := true
		return &v
	case model.TriStateFalse:
		v := false
		return &v
	}
	return nil
}

// triState maps a nullable boolean column back onto a TriState.
func triState(p *bool) model.TriState {
	if p == nil {
		return model.TriStateUnset
	}
	return model.TriStateOf(*p)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeVal(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}
