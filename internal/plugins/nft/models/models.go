// Package models holds the nft plugin's registrar with its collection
// weights and the per-asset vote records that stop an asset voting twice.
package models

import (
	"fmt"
	"slices"

	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

const collectionConfigSize = domain.PubkeySize + 4 + 8 + 8

var AssetVoteRecordDiscriminator = codec.AccountDiscriminator("AssetVoteRecord")

// CollectionConfig is the weight every asset of one verified collection
// carries. Size is how many assets the collection holds.
type CollectionConfig struct {
	Collection domain.Pubkey
	Size       uint32
	Weight     uint64
	Reserved   [8]byte
}

// MaxWeight is the weight of the whole collection, ok is false on overflow.
func (c CollectionConfig) MaxWeight() (uint64, bool) {
	if c.Size == 0 || c.Weight == 0 {
		return 0, true
	}
	w := uint64(c.Size) * c.Weight
	if w/uint64(c.Size) != c.Weight {
		return 0, false
	}
	return w, true
}

// Registrar holds up to MaxCollections collection configs, keyed by collection.
type Registrar struct {
	vwmodels.RegistrarIdentity
	MaxCollections    uint8
	CollectionConfigs []CollectionConfig
	Reserved          [64]byte
}

// CollectionConfig finds the config of collection.
func (r *Registrar) CollectionConfig(collection domain.Pubkey) (CollectionConfig, bool) {
	i := slices.IndexFunc(r.CollectionConfigs, func(c CollectionConfig) bool { return c.Collection == collection })
	if i < 0 {
		return CollectionConfig{}, false
	}
	return r.CollectionConfigs[i], true
}

// Upsert replaces the config for cfg's collection or appends it. It returns
// false when a new collection would exceed MaxCollections.
func (r *Registrar) Upsert(cfg CollectionConfig) bool {
	i := slices.IndexFunc(r.CollectionConfigs, func(c CollectionConfig) bool { return c.Collection == cfg.Collection })
	if i >= 0 {
		r.CollectionConfigs[i] = cfg
		return true
	}
	if len(r.CollectionConfigs) >= int(r.MaxCollections) {
		return false
	}
	r.CollectionConfigs = append(r.CollectionConfigs, cfg)
	return true
}

func (r *Registrar) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 4*domain.PubkeySize + 2 + 1 + 1 + int(r.MaxCollections)*collectionConfigSize + len(r.Reserved))
	r.RegistrarIdentity.EncodeTo(w)
	w.U8(r.MaxCollections)
	w.U8(uint8(len(r.CollectionConfigs)))
	for _, c := range r.CollectionConfigs {
		w.Pubkey(c.Collection)
		w.U32(c.Size)
		w.U64(c.Weight)
		w.Raw(c.Reserved[:])
	}
	if free := int(r.MaxCollections) - len(r.CollectionConfigs); free > 0 {
		w.Zeros(free * collectionConfigSize)
	}
	w.Raw(r.Reserved[:])
	return w.Bytes()
}

func DecodeRegistrar(data []byte) (*Registrar, error) {
	r := codec.NewReader(data)
	reg := &Registrar{RegistrarIdentity: vwmodels.DecodeRegistrarIdentity(r)}
	reg.MaxCollections = r.U8()
	n := int(r.U8())
	if r.Err() == nil && n > int(reg.MaxCollections) {
		return nil, fmt.Errorf("decode nft registrar: %d collections exceed capacity %d", n, reg.MaxCollections)
	}
	reg.CollectionConfigs = make([]CollectionConfig, 0, n)
	for range n {
		c := CollectionConfig{
			Collection: r.Pubkey(),
			Size:       r.U32(),
			Weight:     r.U64(),
		}
		r.Skip(len(c.Reserved))
		reg.CollectionConfigs = append(reg.CollectionConfigs, c)
	}
	r.Skip((int(reg.MaxCollections) - n) * collectionConfigSize)
	r.Skip(len(reg.Reserved))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode nft registrar: %w", err)
	}
	return reg, nil
}

// AssetVoteRecord proves asset already voted on proposal. Its existence is
// the guard; it is deleted when the vote is relinquished.
type AssetVoteRecord struct {
	Proposal            domain.Pubkey
	Asset               domain.Pubkey
	GoverningTokenOwner domain.Pubkey
	Reserved            [8]byte
}

func (v *AssetVoteRecord) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 3*domain.PubkeySize + len(v.Reserved))
	w.Raw(AssetVoteRecordDiscriminator[:])
	w.Pubkey(v.Proposal)
	w.Pubkey(v.Asset)
	w.Pubkey(v.GoverningTokenOwner)
	w.Raw(v.Reserved[:])
	return w.Bytes()
}

func DecodeAssetVoteRecord(data []byte) (*AssetVoteRecord, error) {
	r := codec.NewReader(data)
	r.Discriminator(AssetVoteRecordDiscriminator)
	v := &AssetVoteRecord{
		Proposal:            r.Pubkey(),
		Asset:               r.Pubkey(),
		GoverningTokenOwner: r.Pubkey(),
	}
	r.Skip(len(v.Reserved))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode asset vote record: %w", err)
	}
	return v, nil
}

// AssetVoteRecordAddress is the one vote record an asset can hold per proposal.
func AssetVoteRecordAddress(program, proposal, asset domain.Pubkey) domain.Pubkey {
	return domain.DeriveAddress(program, []byte("nft-vote-record"), proposal.Bytes(), asset.Bytes())
}
