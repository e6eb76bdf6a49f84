package models

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

func TestNewVoterWeightRecordGrantsNothing(t *testing.T) {
	rec := NewVoterWeightRecord(domain.NewUniquePubkey(), domain.NewUniquePubkey(), domain.NewUniquePubkey())

	assert.Zero(t, rec.VoterWeight)
	require.NotNil(t, rec.VoterWeightExpiry)
	assert.Equal(t, domain.Slot(0), *rec.VoterWeightExpiry)
	assert.Nil(t, rec.WeightAction)
	assert.Nil(t, rec.WeightActionTarget)
	assert.True(t, rec.IsExpired(1))
}

func TestNextExpiry(t *testing.T) {
	tests := []struct {
		name  string
		input *domain.Slot
		slot  domain.Slot
		want  domain.Slot
	}{
		{name: "none is stamped with the current slot", input: nil, slot: 42, want: 42},
		{name: "older input is raised to the current slot", input: domain.Some(domain.Slot(10)), slot: 42, want: 42},
		{name: "newer input is kept", input: domain.Some(domain.Slot(50)), slot: 42, want: 50},
		{name: "same slot", input: domain.Some(domain.Slot(42)), slot: 42, want: 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextExpiry(tt.input, tt.slot)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestScopedTo(t *testing.T) {
	proposal := domain.NewUniquePubkey()
	rec := NewVoterWeightRecord(domain.NewUniquePubkey(), domain.NewUniquePubkey(), domain.NewUniquePubkey())

	assert.False(t, rec.ScopedTo(domain.ActionCastVote, &proposal), "empty record has no scope")

	rec.WeightAction = domain.Some(domain.ActionCastVote)
	rec.WeightActionTarget = domain.Some(proposal)
	assert.True(t, rec.ScopedTo(domain.ActionCastVote, &proposal))

	other := domain.NewUniquePubkey()
	assert.False(t, rec.ScopedTo(domain.ActionCastVote, &other))
	assert.False(t, rec.ScopedTo(domain.ActionCreateProposal, &proposal))
	assert.False(t, rec.ScopedTo(domain.ActionCastVote, nil))
}

// The governance engine reads these bytes directly, so field order and option
// tags are checked at fixed offsets.
func TestVoterWeightRecordLayout(t *testing.T) {
	realm, mint, owner, target := domain.NewUniquePubkey(), domain.NewUniquePubkey(), domain.NewUniquePubkey(), domain.NewUniquePubkey()
	rec := &VoterWeightRecord{
		Realm:               realm,
		GoverningTokenMint:  mint,
		GoverningTokenOwner: owner,
		VoterWeight:         100,
		VoterWeightExpiry:   domain.Some(domain.Slot(77)),
		WeightAction:        domain.Some(domain.ActionCastVote),
		WeightActionTarget:  &target,
	}

	data := rec.Encode()
	require.Len(t, data, VoterWeightRecordSize)

	disc := codec.AccountDiscriminator("VoterWeightRecord")
	assert.Equal(t, disc[:], data[:8])
	assert.Equal(t, realm[:], data[8:40])
	assert.Equal(t, mint[:], data[40:72])
	assert.Equal(t, owner[:], data[72:104])
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(data[104:112]))
	assert.Equal(t, byte(1), data[112])
	assert.Equal(t, uint64(77), binary.LittleEndian.Uint64(data[113:121]))
	assert.Equal(t, []byte{1, byte(domain.ActionCastVote)}, data[121:123])
	assert.Equal(t, byte(1), data[123])
	assert.Equal(t, target[:], data[124:156])
	assert.Equal(t, make([]byte, 8), data[156:164])

	decoded, err := DecodeVoterWeightRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec, decoded)
}

func TestMaxVoterWeightRecordNoneExpiryLayout(t *testing.T) {
	rec := NewMaxVoterWeightRecord(domain.NewUniquePubkey(), domain.NewUniquePubkey())
	rec.MaxVoterWeight = 500

	data := rec.Encode()
	require.Len(t, data, MaxVoterWeightRecordSize-8)
	assert.Equal(t, uint64(500), binary.LittleEndian.Uint64(data[72:80]))
	assert.Equal(t, byte(0), data[80], "administrator ceiling has no expiry")
}

func TestDecodeRejectsForeignAccounts(t *testing.T) {
	rec := NewMaxVoterWeightRecord(domain.NewUniquePubkey(), domain.NewUniquePubkey())

	_, err := DecodeVoterWeightRecord(rec.Encode())
	assert.ErrorIs(t, err, codec.ErrBadDiscriminator)

	_, err = DecodeMaxVoterWeightRecord([]byte{1, 2, 3})
	assert.ErrorIs(t, err, codec.ErrShortBuffer)
}

func TestRecordAddressesAreDeterministicPerOwner(t *testing.T) {
	program, realm, mint := domain.NewUniquePubkey(), domain.NewUniquePubkey(), domain.NewUniquePubkey()
	alice, bob := domain.NewUniquePubkey(), domain.NewUniquePubkey()

	assert.Equal(t,
		VoterWeightRecordAddress(program, realm, mint, alice),
		VoterWeightRecordAddress(program, realm, mint, alice))
	assert.NotEqual(t,
		VoterWeightRecordAddress(program, realm, mint, alice),
		VoterWeightRecordAddress(program, realm, mint, bob))
	assert.NotEqual(t,
		RegistrarAddress(program, realm, mint),
		MaxVoterWeightRecordAddress(program, realm, mint))
}
