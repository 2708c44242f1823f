package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// Queryer is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx.
type Queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	Rebind(query string) string
}

// TxObserver receives transaction timings and outcomes.
type TxObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
	ObserveTx(committed bool)
}

// Transactor scopes a unit of work to a single database transaction.
type Transactor struct {
	db       *sqlx.DB
	observer TxObserver
}

// NewTransactor constructs a Transactor. observer may be nil.
func NewTransactor(db *sqlx.DB, observer TxObserver) *Transactor {
	return &Transactor{db: db, observer: observer}
}

// WithinTx runs fn inside a transaction carried by ctx. Nested calls join the
// outer transaction. Any error returned by fn rolls the transaction back.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	start := time.Now()
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		t.observe(start, false)
		return err
	}
	if err := tx.Commit(); err != nil {
		t.observe(start, false)
		return fmt.Errorf("commit tx: %w", err)
	}
	t.observe(start, true)
	return nil
}

func (t *Transactor) observe(start time.Time, committed bool) {
	if t.observer == nil {
		return
	}
	t.observer.ObserveDBQuery("tx", time.Since(start))
	t.observer.ObserveTx(committed)
}

// Conn returns the transaction bound to ctx, falling back to db.
func Conn(ctx context.Context, db *sqlx.DB) Queryer {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}
