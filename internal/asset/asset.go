// Package asset reads non-fungible assets and their collection membership
// from the asset registry.
package asset

import (
	"errors"
	"fmt"

	"voterweight/internal/ledger"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// ProgramID owns every asset account.
var ProgramID = domain.MustParsePubkey("CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d")

var (
	AssetDiscriminator = codec.AccountDiscriminator("Asset")

	ErrInvalidAccountOwner = errors.New("account is not owned by the asset registry")
)

// Collection is the collection an asset claims. Only a Verified claim was
// signed by the collection authority.
type Collection struct {
	Key      domain.Pubkey
	Verified bool
}

type Asset struct {
	Owner      domain.Pubkey
	Name       string
	Collection *Collection
}

func (a *Asset) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + domain.PubkeySize + 4 + len(a.Name) + 34)
	w.Raw(AssetDiscriminator[:])
	w.Pubkey(a.Owner)
	w.Text(a.Name)
	if a.Collection == nil {
		w.U8(0)
	} else {
		w.U8(1)
		w.Pubkey(a.Collection.Key)
		w.Bool(a.Collection.Verified)
	}
	return w.Bytes()
}

func DecodeAsset(data []byte) (*Asset, error) {
	r := codec.NewReader(data)
	r.Discriminator(AssetDiscriminator)
	a := &Asset{
		Owner: r.Pubkey(),
		Name:  r.Text(),
	}
	if hasCollection := r.Bool(); hasCollection {
		a.Collection = &Collection{Key: r.Pubkey(), Verified: r.Bool()}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode asset: %w", err)
	}
	return a, nil
}

func GetAsset(acc *ledger.Account) (*Asset, error) {
	if acc.Owner != ProgramID {
		return nil, ErrInvalidAccountOwner
	}
	return DecodeAsset(acc.Data)
}
