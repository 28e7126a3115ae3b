package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTxRunner runs a function inside one database transaction. The
// transaction handle travels in the context so every repository call made
// by the function joins the same transaction.
type GormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner creates a transaction runner
func NewGormTxRunner(db *gorm.DB) *GormTxRunner {
	return &GormTxRunner{db: db}
}

// RunInTransaction executes fn atomically. An error from fn rolls the
// whole transaction back.
func (r *GormTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return persistenceError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}))
}

// dbFrom returns the transaction bound to the context when one is active,
// the repository's own handle otherwise.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

// persistenceError maps a gorm or driver failure to the retryable
// PERSISTENCE_ERROR sentinel. Domain errors and context cancellation pass
// through so callers keep their semantics.
func persistenceError(err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
}

// isDuplicateKey reports whether the error is a unique constraint violation
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// Ensure GormTxRunner satisfies the application port
var _ onboardingapp.TxRunner = (*GormTxRunner)(nil)
