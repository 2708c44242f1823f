package service

import "context"

// transactor runs fn inside one database transaction.
type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type inlineTx struct{}

func (inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func orInline(tx transactor) transactor {
	if tx == nil {
		return inlineTx{}
	}
	return tx
}
