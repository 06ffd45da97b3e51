package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	domainRepos "scholarship-fund.backend/internal/domain/repositories"
)

type contextKey string

const (
	txKey   contextKey = "tx_db"
	lockKey contextKey = "tx_lock"
)

var commitTx = func(tx *gorm.DB) error {
	return tx.Commit().Error
}

var savepointSeq atomic.Uint64

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(db *gorm.DB) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

// Do executes fn within a transaction. A context that already carries a
// transaction joins it, so the outermost Do decides commit or rollback.
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	txCtx := context.WithValue(ctx, txKey, tx)

	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}

	if err := commitTx(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Savepoint runs fn under a SAVEPOINT of the ctx transaction. On error the
// writes fn made are rolled back and the enclosing transaction stays usable.
func (u *UnitOfWorkImpl) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok {
		return u.Do(ctx, fn)
	}

	name := fmt.Sprintf("sp_%d", savepointSeq.Add(1))
	if err := tx.SavePoint(name).Error; err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	if err := fn(ctx); err != nil {
		if rbErr := tx.RollbackTo(name).Error; rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint: %v)", err, rbErr)
		}
		return err
	}
	return nil
}

// Snapshot runs fn in a read-only REPEATABLE READ transaction so every
// statement sees the same data. SQLite transactions are already serializable.
func (u *UnitOfWorkImpl) Snapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	var opts []*sql.TxOptions
	if u.db.Dialector.Name() != "sqlite" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	tx := u.db.WithContext(ctx).Begin(opts...)
	if tx.Error != nil {
		return fmt.Errorf("failed to begin snapshot: %w", tx.Error)
	}
	defer tx.Rollback()

	return fn(context.WithValue(ctx, txKey, tx))
}

// WithLock marks ctx so SELECTs issued through GetDB take FOR UPDATE row locks.
// SQLite ignores the clause; the registry mutex still serializes writers there.
func (u *UnitOfWorkImpl) WithLock(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockKey, true)
}

// GetDB returns the transaction carried by ctx, or the base DB
func (u *UnitOfWorkImpl) GetDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, u.db)
}

// GetDB is the repository helper: transaction from ctx when present, fallback otherwise,
// with a row lock clause when ctx was marked by WithLock
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	db := fallback
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		db = tx
	}
	if locked, _ := ctx.Value(lockKey).(bool); locked {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db.WithContext(ctx)
}
