package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outermost code", func(t *testing.T) {
		err := New(CodeNotFound, "record not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches wrapped code", func(t *testing.T) {
		inner := New(CodeTransferNotPermitted, "content is not transferable")
		outer := Wrap(inner, CodeInternal, "transfer failed")
		assert.True(t, HasCode(outer, CodeTransferNotPermitted))
		assert.True(t, HasCode(outer, CodeInternal))
	})

	t.Run("finds code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("context: %w", New(CodeAlreadyUnlocked, "record already unlocked"))
		assert.True(t, Is(err, CodeAlreadyUnlocked))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(cause, CodeInternal, "failed to load record")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load record", MessageOf(err))
}
