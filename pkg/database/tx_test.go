package database

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	labels   []string
	outcomes  []bool
}

func (o *recordingObserver) ObserveDBQuery(label string, _ time.Duration) {
	o.labels = append(o.labels, label)
}

func (o *recordingObserver) ObserveTx(committed bool) {
	o.outcomes = append(o.outcomes, committed)
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestWithinTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	obs := &recordingObserver{}
	tr := NewTransactor(db, obs)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE enrollments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := Conn(ctx, db).ExecContext(ctx, "UPDATE enrollments SET status = 'dropped'")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, []string{"tx"}, obs.labels)
	assert.Equal(t, []bool{true}, obs.outcomes)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	obs := &recordingObserver{}
	tr := NewTransactor(db, obs)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, []bool{false}, obs.outcomes)
}

func TestWithinTxJoinsOuterTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	tr := NewTransactor(db, nil)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := tr.WithinTx(context.Background(), func(outer context.Context) error {
		return tr.WithinTx(outer, func(inner context.Context) error {
			assert.Same(t, Conn(outer, db), Conn(inner, db))
			return nil
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnWithoutTransactionReturnsDB(t *testing.T) {
	db, _ := newMockDB(t)
	assert.Same(t, db, Conn(context.Background(), db))
}

func TestConstraintHelpers(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "uq_submissions_assignment_student"}
	fk := &pq.Error{Code: "23503", Constraint: "fk_assignments_module"}
	check := &pq.Error{Code: "23514"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(errors.Join(errors.New("ctx"), fk)))
	assert.True(t, IsCheckViolation(check))
	assert.Equal(t, "fk_assignments_module", ConstraintName(fk))
	assert.Empty(t, ConstraintName(errors.New("plain")))
}
