package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	assert.NoError(t, Store(nil))

	kind := fmt.Errorf("settlement abc: %w", ErrInvalidState)
	assert.Same(t, kind, Store(kind), "kinds pass through unchanged")

	driver := errors.New("database is locked")
	wrapped := Store(driver)
	assert.True(t, IsStoreFailure(wrapped))
	assert.ErrorIs(t, wrapped, driver)
	assert.Equal(t, "store failure: database is locked", wrapped.Error())

	assert.Same(t, wrapped, Store(wrapped), "no double wrapping")
}

func TestIsKind(t *testing.T) {
	for _, err := range []error{ErrNotFound, ErrPermissionDenied, ErrInvalidState, ErrValidation} {
		assert.True(t, IsKind(fmt.Errorf("ctx: %w", err)), err.Error())
	}
	assert.False(t, IsKind(errors.New("boom")))
}
