package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "keepsake/pkg/domain-errors"
	txcontext "keepsake/pkg/platform/tx"
)

// StoreTx provides the transactional boundary for registry calls.
// Implementations serialize every mutation into a single global order and make
// each one all-or-nothing. Reads run through ReadInTx and never observe a
// mutation that has not committed.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
	ReadInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// Checkpointer is implemented by in-memory stores that can roll back.
type Checkpointer interface {
	Checkpoint() (rollback func(), commit func())
}

// inMemoryStoreTx serializes mutations with one global lock, rolls back every
// registered checkpointer when fn fails, and holds readers off while a
// mutation is in flight.
type inMemoryStoreTx struct {
	mu            sync.RWMutex
	checkpointers []Checkpointer
}

func newInMemoryStoreTx(checkpointers ...Checkpointer) *inMemoryStoreTx {
	return &inMemoryStoreTx{checkpointers: checkpointers}
}

// NewInMemoryStoreTx builds the StoreTx used with the in-memory stores.
func NewInMemoryStoreTx(checkpointers ...Checkpointer) StoreTx {
	return newInMemoryStoreTx(checkpointers...)
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rollbacks := make([]func(), 0, len(t.checkpointers))
	commits := make([]func(), 0, len(t.checkpointers))
	for _, c := range t.checkpointers {
		rollback, commit := c.Checkpoint()
		rollbacks = append(rollbacks, rollback)
		commits = append(commits, commit)
	}
	if err := fn(ctx); err != nil {
		for i := len(rollbacks) - 1; i >= 0; i-- {
			rollbacks[i]()
		}
		return err
	}
	for _, commit := range commits {
		commit()
	}
	return nil
}

func (t *inMemoryStoreTx) ReadInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "read aborted: context cancelled")
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return fn(ctx)
}

// registryLockKey is the advisory lock that orders all registry mutations.
const registryLockKey int64 = 0x6b656570 // "keep"

const defaultTxTimeout = 5 * time.Second

// PostgresStoreTx runs fn in a SQL transaction that first takes a
// transaction-scoped advisory lock, giving all instances one global order.
type PostgresStoreTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresStoreTx(db *sql.DB, timeout time.Duration) *PostgresStoreTx {
	return &PostgresStoreTx{db: db, timeout: timeout}
}

func (t *PostgresStoreTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", registryLockKey); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire registry lock")
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}

// ReadInTx runs fn against committed state. Reads go through the pool rather
// than a transaction: under READ COMMITTED they never see another call's
// uncommitted writes, and they do not queue behind the advisory lock.
func (t *PostgresStoreTx) ReadInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "read aborted: context cancelled")
	}
	return fn(ctx)
}
