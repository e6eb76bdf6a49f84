package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/pkg/domain"
)

func TestOptionLayout(t *testing.T) {
	slot := domain.Slot(7)
	w := NewWriter(16)
	w.OptionSlot(&slot)
	w.OptionSlot(nil)

	assert.Equal(t, []byte{1, 7, 0, 0, 0, 0, 0, 0, 0, 0}, w.Bytes())
}

func TestReaderErrors(t *testing.T) {
	t.Run("short buffer is sticky", func(t *testing.T) {
		r := NewReader([]byte{1, 2, 3})
		assert.Equal(t, uint64(0), r.U64())
		assert.Equal(t, uint8(0), r.U8())
		require.Error(t, r.Err())
		assert.True(t, errors.Is(r.Err(), ErrShortBuffer))
	})

	t.Run("option tag must be zero or one", func(t *testing.T) {
		r := NewReader([]byte{2, 0, 0, 0, 0, 0, 0, 0, 0})
		assert.Nil(t, r.OptionU64())
		assert.True(t, errors.Is(r.Err(), ErrBadOptionTag))
	})

	t.Run("discriminator mismatch", func(t *testing.T) {
		w := NewWriter(8)
		d := AccountDiscriminator("Registrar")
		w.Raw(d[:])
		r := NewReader(w.Bytes())
		r.Discriminator(AccountDiscriminator("VoterWeightRecord"))
		assert.True(t, errors.Is(r.Err(), ErrBadDiscriminator))
	})

	t.Run("unknown action tag", func(t *testing.T) {
		r := NewReader([]byte{1, 9})
		r.OptionAction()
		require.Error(t, r.Err())
	})
}

func TestCOptionPubkey(t *testing.T) {
	key := domain.NewUniquePubkey()
	w := NewWriter(72)
	w.COptionPubkey(nil)
	w.COptionPubkey(&key)
	require.Equal(t, 72, w.Len())

	r := NewReader(w.Bytes())
	assert.Nil(t, r.COptionPubkey())
	got := r.COptionPubkey()
	require.NoError(t, r.Err())
	require.NotNil(t, got)
	assert.Equal(t, key, *got)
}
