package onboarding

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is one unit of a multi-record state change. Execute mutates exactly
// one logical record set; Compensate reverses it. Compensate may be nil for
// steps that are naturally idempotent to re-run forward.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// CommitResult reports which steps completed before a failure
type CommitResult struct {
	Committed []string
}

// CommitCoordinator executes ordered steps as a single atomic unit. With a
// TxRunner all steps run inside one store transaction. Without one, steps
// run forward best-effort and a failure triggers compensating rollback of
// the already-committed steps in reverse order.
type CommitCoordinator struct {
	tx     TxRunner
	logger *zap.Logger
}

// NewCommitCoordinator creates a coordinator. tx may be nil to force
// compensation mode.
func NewCommitCoordinator(tx TxRunner, logger *zap.Logger) *CommitCoordinator {
	return &CommitCoordinator{tx: tx, logger: logger}
}

// Commit runs the steps in order. On failure the returned CommitResult
// lists the steps that had completed; in compensation mode those steps have
// already been rolled back when Commit returns.
func (c *CommitCoordinator) Commit(ctx context.Context, steps []Step) (CommitResult, error) {
	if c.tx != nil {
		result := CommitResult{}
		err := c.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
			for _, step := range steps {
				if err := step.Execute(txCtx); err != nil {
					return fmt.Errorf("step %q: %w", step.Name, err)
				}
				result.Committed = append(result.Committed, step.Name)
			}
			return nil
		})
		if err != nil {
			// The transaction rolled back; nothing survived.
			return CommitResult{}, err
		}
		return result, nil
	}

	return c.commitWithCompensation(ctx, steps)
}

// commitWithCompensation executes forward and unwinds on failure
func (c *CommitCoordinator) commitWithCompensation(ctx context.Context, steps []Step) (CommitResult, error) {
	var committed []Step
	for _, step := range steps {
		if err := step.Execute(ctx); err != nil {
			c.logger.Warn("commit step failed, rolling back",
				zap.String("step", step.Name),
				zap.Int("committed_steps", len(committed)),
				zap.Error(err),
			)
			c.rollback(ctx, committed)
			return CommitResult{}, fmt.Errorf("step %q: %w", step.Name, err)
		}
		committed = append(committed, step)
	}

	result := CommitResult{Committed: make([]string, len(committed))}
	for i, step := range committed {
		result.Committed[i] = step.Name
	}
	return result, nil
}

// rollback compensates committed steps in reverse order. A failing
// compensation is logged and the remaining compensations still run; partial
// rollback is surfaced to operators through the log, not the caller.
func (c *CommitCoordinator) rollback(ctx context.Context, committed []Step) {
	for i := len(committed) - 1; i >= 0; i-- {
		step := committed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			c.logger.Error("compensation failed",
				zap.String("step", step.Name),
				zap.Error(err),
			)
		}
	}
}
