package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStorageError("record share", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, err.IsInternal())
	assert.Equal(t, "record share", err.Details["operation"])
	assert.Contains(t, err.Error(), "STORAGE_ERROR")
	assert.NotEmpty(t, err.Stack)
}

func TestAsAppError_FindsWrapped(t *testing.T) {
	inner := New(ErrCodeCooldownActive, "channel on cooldown").WithDetail("hours_remaining", 22)
	wrapped := fmt.Errorf("share twitter: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeCooldownActive, appErr.Code)
	assert.Equal(t, 22, appErr.Details["hours_remaining"])

	_, ok = AsAppError(stderrors.New("plain"))
	assert.False(t, ok)
	_, ok = AsAppError(nil)
	assert.False(t, ok)
}

func TestClassification(t *testing.T) {
	assert.True(t, NewGiveawayNotFoundError("g1").IsNotFound())
	assert.True(t, New(ErrCodeSessionNotFound, "gone").IsNotFound())
	assert.True(t, New(ErrCodeUnknownChannel, "nope").IsValidation())
	assert.True(t, NewForbiddenError("admins only").IsUnauthorized())
	assert.False(t, New(ErrCodeNothingToConfirm, "empty").IsInternal())
}
