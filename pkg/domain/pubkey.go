package domain

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	dErrors "voterweight/pkg/domain-errors"
)

// PubkeySize is the byte length of every account and program identifier.
const PubkeySize = 32

// Pubkey identifies an account, a program, a mint or a signer.
// Invariant: exactly 32 bytes; the zero value is the "default" key and is
// never a valid realm, mint or owner.
type Pubkey [PubkeySize]byte

// ParsePubkey decodes a base58 key at trust boundaries.
//
// Errors: CodeInvalidInput when the value is empty, not base58, or not 32 bytes.
func ParsePubkey(s string) (Pubkey, error) {
	if s == "" {
		return Pubkey{}, dErrors.New(dErrors.CodeInvalidInput, "pubkey cannot be empty")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, dErrors.New(dErrors.CodeInvalidInput, "pubkey is not valid base58")
	}
	if len(raw) != PubkeySize {
		return Pubkey{}, dErrors.New(dErrors.CodeInvalidInput, "pubkey must be 32 bytes")
	}
	var p Pubkey
	copy(p[:], raw)
	return p, nil
}

// MustParsePubkey is ParsePubkey for constants and fixtures.
func MustParsePubkey(s string) Pubkey {
	p, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PubkeyFromBytes copies a 32-byte slice into a Pubkey.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	if len(b) != PubkeySize {
		return Pubkey{}, dErrors.New(dErrors.CodeInvalidInput, "pubkey must be 32 bytes")
	}
	var p Pubkey
	copy(p[:], b)
	return p, nil
}

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

func (p Pubkey) Bytes() []byte {
	return p[:]
}

func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

var uniqueCounter atomic.Uint64

// NewUniquePubkey returns a process-unique key. Fixtures and tests use it
// where any distinct key will do.
func NewUniquePubkey() Pubkey {
	var p Pubkey
	binary.BigEndian.PutUint64(p[24:], uniqueCounter.Add(1))
	p[0] = 0x01
	return p
}

const addressMarker = "VoterWeightDerivedAddress"

// DeriveAddress computes the deterministic address of an account owned by
// programID from its seeds. The same seeds always yield the same address,
// which is what makes create-if-absent a duplicate guard.
func DeriveAddress(programID Pubkey, seeds ...[]byte) Pubkey {
	h, _ := blake2b.New256(nil)
	var prefix [4]byte
	for _, seed := range seeds {
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(seed)))
		h.Write(prefix[:])
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(addressMarker))
	var p Pubkey
	copy(p[:], h.Sum(nil))
	return p
}
