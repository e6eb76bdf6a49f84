package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errReceiptUsed = Define(CodeDuplicateUse, "duplicated_receipt_detected", "duplicated receipt detected")

func TestCatalogueErrors(t *testing.T) {
	t.Run("matches by reason through wrapping", func(t *testing.T) {
		err := fmt.Errorf("update: %w", errReceiptUsed)
		assert.True(t, errors.Is(err, errReceiptUsed))
		assert.True(t, HasCode(err, CodeDuplicateUse))
		assert.Equal(t, "duplicated_receipt_detected", ReasonOf(err))
	})

	t.Run("ad-hoc errors never match catalogue entries", func(t *testing.T) {
		err := New(CodeDuplicateUse, "duplicated receipt detected")
		assert.False(t, errors.Is(err, errReceiptUsed))
		assert.Empty(t, ReasonOf(err))
	})

	t.Run("wrap keeps the reason of the cause", func(t *testing.T) {
		err := Wrap(errReceiptUsed, CodeConflict, "commit failed")
		assert.True(t, HasCode(err, CodeConflict))
		assert.Equal(t, "duplicated_receipt_detected", ReasonOf(err))
		assert.Equal(t, "commit failed: duplicated receipt detected", err.Error())
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "missing")))
}

func TestWithCause(t *testing.T) {
	cause := errors.New("short buffer")
	err := errReceiptUsed.WithCause(cause)

	assert.True(t, errors.Is(err, errReceiptUsed))
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, errReceiptUsed.Err, "catalogue value is not mutated")
}
