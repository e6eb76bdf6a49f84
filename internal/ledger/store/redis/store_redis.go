package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"voterweight/internal/ledger"
	"voterweight/pkg/domain"
	"voterweight/pkg/platform/sentinel"
)

const (
	// Redis key prefix for ledger accounts; the value is owner || data.
	accountKeyPrefix = "vw:account:"

	// Optimistic transactions are retried when a watched key changes underneath.
	maxApplyAttempts = 5
)

// RedisStore is a ledger.Store shared by every instance of the service.
// Create-if-absent relies on WATCH: key existence is what marks an address taken.
type RedisStore struct {
	client *redis.Client
}

func New(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func accountKey(address domain.Pubkey) string {
	return accountKeyPrefix + address.String()
}

func (s *RedisStore) Get(ctx context.Context, address domain.Pubkey) (*ledger.Account, error) {
	raw, err := s.client.Get(ctx, accountKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get account %s: %w", address, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", address, err)
	}
	return decodeValue(address, raw)
}

func decodeValue(address domain.Pubkey, raw []byte) (*ledger.Account, error) {
	if len(raw) < domain.PubkeySize {
		return nil, fmt.Errorf("decode account %s: %w", address, sentinel.ErrInvalidState)
	}
	owner, _ := domain.PubkeyFromBytes(raw[:domain.PubkeySize])
	data := make([]byte, len(raw)-domain.PubkeySize)
	copy(data, raw[domain.PubkeySize:])
	return &ledger.Account{Address: address, Owner: owner, Data: data}, nil
}

func encodeValue(acc ledger.Account) []byte {
	out := make([]byte, 0, domain.PubkeySize+len(acc.Data))
	out = append(out, acc.Owner[:]...)
	return append(out, acc.Data...)
}

// Apply watches every read and touched key, compares the read keys with what
// the unit of work saw, checks that created keys are absent and writes the
// batch in one MULTI/EXEC. A concurrent writer aborts the EXEC and the batch is
// retried; the retry then fails the reads check or the create check.
func (s *RedisStore) Apply(ctx context.Context, reads []ledger.Read, changes []ledger.Change) error {
	if len(changes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(changes))
	var createKeys []string
	for _, ch := range changes {
		key := accountKey(ch.Account.Address)
		keys = append(keys, key)
		if ch.Kind == ledger.ChangeCreate {
			createKeys = append(createKeys, key)
		}
	}
	watched := slices.Clone(keys)
	for _, r := range reads {
		watched = append(watched, accountKey(r.Address))
	}

	txf := func(tx *redis.Tx) error {
		if err := checkReads(ctx, tx, reads); err != nil {
			return err
		}
		if len(createKeys) > 0 {
			n, err := tx.Exists(ctx, createKeys...).Result()
			if err != nil {
				return fmt.Errorf("check created accounts: %w", err)
			}
			if n > 0 {
				return fmt.Errorf("create account: %w", sentinel.ErrAlreadyUsed)
			}
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, ch := range changes {
				switch ch.Kind {
				case ledger.ChangeCreate, ledger.ChangePut:
					pipe.Set(ctx, keys[i], encodeValue(ch.Account), 0)
				case ledger.ChangeDelete:
					pipe.Del(ctx, keys[i])
				default:
					return fmt.Errorf("apply change %s: %w", ch.Kind, sentinel.ErrInvalidState)
				}
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, watched...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("apply changes: %w", sentinel.ErrUnavailable)
}

func checkReads(ctx context.Context, tx *redis.Tx, reads []ledger.Read) error {
	for _, r := range reads {
		var current *ledger.Account
		raw, err := tx.Get(ctx, accountKey(r.Address)).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("check account %s: %w", r.Address, err)
		default:
			if current, err = decodeValue(r.Address, raw); err != nil {
				return err
			}
		}
		if !r.Matches(current) {
			return fmt.Errorf("account %s changed since read: %w", r.Address, sentinel.ErrConflict)
		}
	}
	return nil
}
