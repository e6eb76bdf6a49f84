package models

import (
	"math"

	"voterweight/pkg/domain"
)

const votingMintConfigSize = domain.PubkeySize + 1 + 8 + 55

// VotingMintConfig is an accepted deposit mint and the exchange rate from its
// native amounts to vote weight.
type VotingMintConfig struct {
	Mint domain.Pubkey
	// DigitShift applies a 10^DigitShift factor to native amounts.
	DigitShift int8
	// MintSupply is the supply seen when the mint was configured. It feeds
	// the max voter weight.
	MintSupply uint64
	Reserved   [55]byte
}

func (c VotingMintConfig) InUse() bool { return !c.Mint.IsZero() }

// DigitShiftNative converts a native amount to vote weight. It reports false
// when the result does not fit a uint64.
func (c VotingMintConfig) DigitShiftNative(amount uint64) (uint64, bool) {
	return digitShift(amount, c.DigitShift)
}

func digitShift(amount uint64, shift int8) (uint64, bool) {
	if shift < 0 {
		for i := int8(0); i > shift; i-- {
			if amount == 0 {
				break
			}
			amount /= 10
		}
		return amount, true
	}
	for i := int8(0); i < shift; i++ {
		if amount > math.MaxUint64/10 {
			return 0, false
		}
		amount *= 10
	}
	return amount, true
}
