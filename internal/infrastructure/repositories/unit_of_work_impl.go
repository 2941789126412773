package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "cardswap.backend/internal/domain/errors"
	domainRepos "cardswap.backend/internal/domain/repositories"
)

// Postgres SQLSTATEs raised when a transaction loses a race for row locks.
const (
	sqlStateDeadlock      = "40P01"
	sqlStateSerialization = "40001"
)

type contextKey string

const (
	txKey   contextKey = "tx_db"
	lockKey contextKey = "row_lock"
)

var commitTx = func(tx *gorm.DB) error {
	return tx.Commit().Error
}

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(db *gorm.DB) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

// Do executes fn within a transaction. A Do nested inside another joins the
// outer transaction.
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	txCtx := context.WithValue(ctx, txKey, tx)
	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return lostRace(err)
	}
	if err := commitTx(tx); err != nil {
		tx.Rollback()
		return lostRace(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// lostRace turns a deadlock or serialization abort into an InvalidState error:
// the other transaction went first and the caller should re-read.
func lostRace(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == sqlStateDeadlock || pgErr.Code == sqlStateSerialization) {
		lost := domainerrors.InvalidState("a concurrent update won the race, reload and retry")
		lost.Err = errors.Join(domainerrors.ErrInvalidState, err)
		return lost
	}
	return err
}

// WithLock makes subsequent single-row reads through ctx take FOR UPDATE locks.
func (u *UnitOfWorkImpl) WithLock(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockKey, true)
}

// GetDB returns the transaction from ctx if present, otherwise fallback.
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// forUpdate adds a row lock when ctx was produced by WithLock. Dialects
// without row locking (sqlite) drop the clause.
func forUpdate(ctx context.Context, db *gorm.DB) *gorm.DB {
	if locked, _ := ctx.Value(lockKey).(bool); locked {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
