// Package xcontext carries the per-request collaborators (database handle,
// transaction, logger, configs, caller identity, clock) through a standard
// context.Context, so domains and repositories never hold global state.
package xcontext

import (
	"context"
	"time"

	"github.com/solotto-lab/backend/config"
	"github.com/solotto-lab/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey struct{}
	loggerKey  struct{}
	dbKey      struct{}
	txKey      struct{}
	userIDKey  struct{}
	clockKey   struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	if cfg, ok := ctx.Value(configsKey{}).(config.Configs); ok {
		return cfg
	}

	return config.Configs{}
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}

	return logger.NewLogger(logger.INFO)
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current database handle. If a transaction was opened on this
// context and neither committed nor rolled back yet, the transaction is
// returned instead.
func DB(ctx context.Context) *gorm.DB {
	if t, ok := ctx.Value(txKey{}).(*dbTx); ok && !t.done {
		return t.tx
	}

	if db, ok := ctx.Value(dbKey{}).(*gorm.DB); ok {
		return db
	}

	return nil
}

type dbTx struct {
	tx   *gorm.DB
	done bool
}

// HasDBTransaction reports whether an open transaction is bound to ctx.
func HasDBTransaction(ctx context.Context) bool {
	t, ok := ctx.Value(txKey{}).(*dbTx)
	return ok && !t.done
}

// WithDBTransaction begins a database transaction on the returned context.
// Every DB() call on that context runs inside the transaction until it is
// committed or rolled back.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &dbTx{tx: DB(ctx).Begin()})
}

// WithCommitDBTransaction commits the current transaction. It is safe to call
// WithRollbackDBTransaction afterwards (usually via defer), it becomes a
// no-op.
func WithCommitDBTransaction(ctx context.Context) context.Context {
	if t, ok := ctx.Value(txKey{}).(*dbTx); ok && !t.done {
		t.tx.Commit()
		t.done = true
	}

	return ctx
}

// WithRollbackDBTransaction rollbacks the current transaction if it hasn't
// been committed yet.
func WithRollbackDBTransaction(ctx context.Context) context.Context {
	if t, ok := ctx.Value(txKey{}).(*dbTx); ok && !t.done {
		t.tx.Rollback()
		t.done = true
	}

	return ctx
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}

	return ""
}

// WithNowFunc overrides the wall clock of this context. Tests use it to pin
// draw timing and week gating.
func WithNowFunc(ctx context.Context, f func() time.Time) context.Context {
	return context.WithValue(ctx, clockKey{}, f)
}

func Now(ctx context.Context) time.Time {
	if f, ok := ctx.Value(clockKey{}).(func() time.Time); ok {
		return f()
	}

	return time.Now()
}
