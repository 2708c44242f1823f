package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Clone(ErrNotFound, "course not found"))

	got := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "course not found", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrConflict, "already enrolled")
	assert.Equal(t, "already enrolled", clone.Message)
	assert.Equal(t, "conflict", ErrConflict.Message)
	assert.Equal(t, ErrConflict.Message, Clone(ErrConflict, "").Message)
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("ctx: %w", Wrap(sql.ErrNoRows, ErrNotFound.Code, ErrNotFound.Status, "missing"))
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))
	assert.False(t, Is(sql.ErrNoRows, ErrNotFound))
	assert.False(t, Is(nil, ErrNotFound))
}
