package core

import (
	"context"
	"errors"
	"fmt"

	"voterweight/internal/events"
	"voterweight/internal/ledger"
	"voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	dErrors "voterweight/pkg/domain-errors"
	"voterweight/pkg/platform/sentinel"
)

// Reader is the read side of a unit of work.
type Reader interface {
	Get(ctx context.Context, address domain.Pubkey) (*ledger.Account, error)
}

// LoadAccount reads address, naming what in the not-found error.
func LoadAccount(ctx context.Context, r Reader, address domain.Pubkey, what string) (*ledger.Account, error) {
	acc, err := r.Get(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrAccountNotFound.WithCause(fmt.Errorf("%s %s", what, address))
		}
		return nil, err
	}
	return acc, nil
}

// LoadAccounts reads addresses concurrently, preserving their order.
func (o *Op) LoadAccounts(ctx context.Context, addresses []domain.Pubkey, what string) ([]*ledger.Account, error) {
	accs, err := o.LoadMany(ctx, addresses)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrAccountNotFound.WithCause(fmt.Errorf("%s: %w", what, err))
	}
	return accs, err
}

// AccountError classifies a failure to read a collaborator's account. Domain
// errors pass through; anything else means the data did not decode.
func AccountError(what string, address domain.Pubkey, err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return ErrInvalidAccountData.WithCause(fmt.Errorf("%s %s: %w", what, address, err))
}

// LoadOwned reads address, checks program owns it and decodes it.
func LoadOwned[T any](ctx context.Context, r Reader, program, address domain.Pubkey, what string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	acc, err := LoadAccount(ctx, r, address, what)
	if err != nil {
		return zero, err
	}
	return DecodeOwned(acc, program, what, decode)
}

// DecodeOwned checks program owns acc and decodes it.
func DecodeOwned[T any](acc *ledger.Account, program domain.Pubkey, what string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	if acc.Owner != program {
		return zero, ErrInvalidAccountOwner.WithCause(fmt.Errorf("%s %s owned by %s", what, acc.Address, acc.Owner))
	}
	v, err := decode(acc.Data)
	if err != nil {
		return zero, ErrInvalidAccountData.WithCause(fmt.Errorf("%s %s: %w", what, acc.Address, err))
	}
	return v, nil
}

// LoadVoterWeightRecord reads the plugin's voter weight record at address.
func (o *Op) LoadVoterWeightRecord(ctx context.Context, address domain.Pubkey) (*models.VoterWeightRecord, error) {
	return LoadOwned(ctx, o, o.program, address, "voter weight record", models.DecodeVoterWeightRecord)
}

// LoadMaxVoterWeightRecord reads the plugin's max voter weight record at address.
func (o *Op) LoadMaxVoterWeightRecord(ctx context.Context, address domain.Pubkey) (*models.MaxVoterWeightRecord, error) {
	return LoadOwned(ctx, o, o.program, address, "max voter weight record", models.DecodeMaxVoterWeightRecord)
}

// PutVoterWeightRecord stages rec at address and queues an update event.
func (o *Op) PutVoterWeightRecord(address domain.Pubkey, rec *models.VoterWeightRecord) {
	o.Put(ledger.Account{Address: address, Owner: o.program, Data: rec.Encode()})
	o.VoterWeightRecordChanged(events.KindVoterWeightUpdated, address, rec)
}

// PutMaxVoterWeightRecord stages rec at address and queues an update event.
func (o *Op) PutMaxVoterWeightRecord(address domain.Pubkey, rec *models.MaxVoterWeightRecord) {
	o.Put(ledger.Account{Address: address, Owner: o.program, Data: rec.Encode()})
	o.MaxVoterWeightRecordChanged(events.KindMaxVoterWeightUpdated, address, rec)
}

// PutAccount stages data at address owned by the plugin program.
func (o *Op) PutAccount(address domain.Pubkey, data []byte) {
	o.Put(ledger.Account{Address: address, Owner: o.program, Data: data})
}

// CreateAccount stages a create of data at address owned by the plugin
// program. exists is returned when the address is already taken.
func (o *Op) CreateAccount(ctx context.Context, address domain.Pubkey, data []byte, exists error) error {
	err := o.Create(ctx, ledger.Account{Address: address, Owner: o.program, Data: data})
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return exists
	}
	return err
}

// ProgramID is the program that owns every account the operation writes.
func (o *Op) ProgramID() domain.Pubkey { return o.program }

// CreateRegistrar creates the registrar for id's realm and mint from its
// encoded form.
func (o *Op) CreateRegistrar(ctx context.Context, id models.RegistrarIdentity, data []byte) (domain.Pubkey, error) {
	address := models.RegistrarAddress(o.program, id.Realm, id.GoverningTokenMint)
	if err := o.CreateAccount(ctx, address, data, ErrRegistrarExists); err != nil {
		return domain.Pubkey{}, err
	}
	o.RegistrarConfigured(address, id)
	return address, nil
}

// PutRegistrar stages a reconfigured registrar.
func (o *Op) PutRegistrar(address domain.Pubkey, id models.RegistrarIdentity, data []byte) {
	o.PutAccount(address, data)
	o.RegistrarConfigured(address, id)
}

// CreateVoterWeightRecord creates the owner's record for the registrar's
// realm and mint. The new record grants nothing until a plugin updates it.
func (o *Op) CreateVoterWeightRecord(ctx context.Context, id models.RegistrarIdentity, owner domain.Pubkey) (domain.Pubkey, *models.VoterWeightRecord, error) {
	address := models.VoterWeightRecordAddress(o.program, id.Realm, id.GoverningTokenMint, owner)
	rec := models.NewVoterWeightRecord(id.Realm, id.GoverningTokenMint, owner)
	if err := o.CreateAccount(ctx, address, rec.Encode(), ErrVoterWeightRecordExists); err != nil {
		return domain.Pubkey{}, nil, err
	}
	o.VoterWeightRecordChanged(events.KindVoterWeightRecordCreated, address, rec)
	return address, rec, nil
}

// CreateMaxVoterWeightRecord creates the max record for the registrar's
// realm and mint with weight 0 and no expiry.
func (o *Op) CreateMaxVoterWeightRecord(ctx context.Context, id models.RegistrarIdentity) (domain.Pubkey, *models.MaxVoterWeightRecord, error) {
	address := models.MaxVoterWeightRecordAddress(o.program, id.Realm, id.GoverningTokenMint)
	rec := models.NewMaxVoterWeightRecord(id.Realm, id.GoverningTokenMint)
	if err := o.CreateAccount(ctx, address, rec.Encode(), ErrMaxVoterWeightRecordExists); err != nil {
		return domain.Pubkey{}, nil, err
	}
	o.MaxVoterWeightRecordChanged(events.KindMaxVoterWeightRecordCreated, address, rec)
	return address, rec, nil
}

// CheckVoterWeightRecordIdentity checks rec belongs to the registrar's realm and mint.
func CheckVoterWeightRecordIdentity(id models.RegistrarIdentity, rec *models.VoterWeightRecord) error {
	if rec.Realm != id.Realm {
		return ErrInvalidVoterWeightRecordRealm
	}
	if rec.GoverningTokenMint != id.GoverningTokenMint {
		return ErrInvalidVoterWeightRecordMint
	}
	return nil
}

// CheckMaxVoterWeightRecordIdentity checks rec belongs to the registrar's realm and mint.
func CheckMaxVoterWeightRecordIdentity(id models.RegistrarIdentity, rec *models.MaxVoterWeightRecord) error {
	if rec.Realm != id.Realm {
		return ErrInvalidMaxVoterWeightRecordRealm
	}
	if rec.GoverningTokenMint != id.GoverningTokenMint {
		return ErrInvalidMaxVoterWeightRecordMint
	}
	return nil
}

// CreateVoterWeightRecord runs the shared create operation for owner's record
// under the registrar identified by id.
func (r *Runtime) CreateVoterWeightRecord(ctx context.Context, id models.RegistrarIdentity, owner domain.Pubkey) (domain.Pubkey, error) {
	address := models.VoterWeightRecordAddress(r.plugin.ProgramID, id.Realm, id.GoverningTokenMint, owner)
	err := r.Execute(ctx, "create_voter_weight_record", []domain.Pubkey{address}, func(ctx context.Context, op *Op) error {
		if _, _, err := op.CreateVoterWeightRecord(ctx, id, owner); err != nil {
			return err
		}
		op.Audit("record", address.String(), "owner", owner.String())
		return nil
	})
	if err != nil {
		return domain.Pubkey{}, err
	}
	return address, nil
}

// CreateMaxVoterWeightRecord runs the shared create operation for the max
// record of id's realm and mint.
func (r *Runtime) CreateMaxVoterWeightRecord(ctx context.Context, id models.RegistrarIdentity) (domain.Pubkey, error) {
	address := models.MaxVoterWeightRecordAddress(r.plugin.ProgramID, id.Realm, id.GoverningTokenMint)
	err := r.Execute(ctx, "create_max_voter_weight_record", []domain.Pubkey{address}, func(ctx context.Context, op *Op) error {
		if _, _, err := op.CreateMaxVoterWeightRecord(ctx, id); err != nil {
			return err
		}
		op.Audit("record", address.String(), "realm", id.Realm.String())
		return nil
	})
	if err != nil {
		return domain.Pubkey{}, err
	}
	return address, nil
}
