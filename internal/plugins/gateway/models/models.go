// Package models holds the gateway registrar.
package models

import (
	"fmt"

	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// Registrar names the gatekeeper network whose passes admit voters.
type Registrar struct {
	vwmodels.RegistrarIdentity
	// GatekeeperNetwork is the pass type a voter must present.
	GatekeeperNetwork domain.Pubkey
	Reserved          [128]byte
}

func (r *Registrar) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 5*domain.PubkeySize + 1 + len(r.Reserved))
	r.RegistrarIdentity.EncodeTo(w)
	w.Pubkey(r.GatekeeperNetwork)
	w.Raw(r.Reserved[:])
	return w.Bytes()
}

func DecodeRegistrar(data []byte) (*Registrar, error) {
	r := codec.NewReader(data)
	reg := &Registrar{RegistrarIdentity: vwmodels.DecodeRegistrarIdentity(r)}
	reg.GatekeeperNetwork = r.Pubkey()
	r.Skip(len(reg.Reserved))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode gateway registrar: %w", err)
	}
	return reg, nil
}
