package databases

// go generate: mockery --name KeyValueStore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/linesmerrill/court-compliance-api/apperr"
)

// ErrKeyNotFound is returned by a KeyValueStore when a key has no value
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the persistence contract every storage backend implements.
// Keys are scoped to a tenant namespace and formatted "{entity-type}:{id}";
// values are JSON-serialized records.
type KeyValueStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	// Keys lists every key in namespace starting with prefix, in any order
	Keys(ctx context.Context, namespace, prefix string) ([]string, error)
	// CompareAndSwap stores next only when the current value equals prev.
	// A nil prev means the key must be absent.
	CompareAndSwap(ctx context.Context, namespace, key string, prev, next []byte) (bool, error)
	Close() error
}

// Key formats a storage key for an entity type and id
func Key(entity, id string) string {
	return entity + ":" + id
}

// Entity type prefixes
const (
	deadlineEntity      = "deadline"
	extensionEntity     = "extension"
	reminderEntity      = "reminder"
	speedyTrialEntity   = "speedy-trial"
	calendarEventEntity = "calendar-event"
	resourceEntity      = "calendar-resource"
	lockEntity          = "scheduler-lock"
)

// Revision is the opaque stored form of a record at the time it was read.
// Passing it back to a conditional save makes the write fail if anyone else
// changed the record in between.
type Revision []byte

// recordStore is the shared JSON read/write path for typed repositories
type recordStore[T any] struct {
	db     KeyValueStore
	entity string
}

func (r recordStore[T]) findOne(ctx context.Context, namespace, id string) (*T, []byte, error) {
	key := Key(r.entity, id)
	raw, err := r.db.Get(ctx, namespace, key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil, apperr.New(apperr.NotFound, "%s %q not found", r.entity, id)
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.StorageFailure, err, "failed to read %s", key)
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, nil, apperr.Wrap(apperr.StorageFailure, err, "failed to decode %s", key)
	}
	return v, raw, nil
}

func (r recordStore[T]) find(ctx context.Context, namespace string) ([]T, error) {
	keys, err := r.db.Keys(ctx, namespace, r.entity+":")
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageFailure, err, "failed to list %s keys", r.entity)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, key := range keys {
		raw, err := r.db.Get(ctx, namespace, key)
		if errors.Is(err, ErrKeyNotFound) {
			// deleted between Keys and Get
			continue
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.StorageFailure, err, "failed to read %s", key)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, apperr.Wrap(apperr.StorageFailure, err, "failed to decode %s", key)
		}
		out = append(out, v)
	}
	return out, nil
}

func (r recordStore[T]) save(ctx context.Context, namespace, id string, v *T) error {
	key := Key(r.entity, id)
	b, err := json.Marshal(v)
	if err != nil {
		return apperr.Wrap(apperr.StorageFailure, err, "failed to encode %s", key)
	}
	if err := r.db.Set(ctx, namespace, key, b); err != nil {
		return apperr.Wrap(apperr.StorageFailure, err, "failed to write %s", key)
	}
	return nil
}

// swap writes v only if the stored bytes still equal prev
func (r recordStore[T]) swap(ctx context.Context, namespace, id string, prev []byte, v *T) (bool, error) {
	key := Key(r.entity, id)
	b, err := json.Marshal(v)
	if err != nil {
		return false, apperr.Wrap(apperr.StorageFailure, err, "failed to encode %s", key)
	}
	ok, err := r.db.CompareAndSwap(ctx, namespace, key, prev, b)
	if err != nil {
		return false, apperr.Wrap(apperr.StorageFailure, err, "failed to write %s", key)
	}
	return ok, nil
}

func (r recordStore[T]) delete(ctx context.Context, namespace, id string) error {
	key := Key(r.entity, id)
	if err := r.db.Delete(ctx, namespace, key); err != nil {
		return apperr.Wrap(apperr.StorageFailure, err, "failed to delete %s", key)
	}
	return nil
}

// globEscape escapes glob metacharacters for backends that match keys by pattern
func globEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
