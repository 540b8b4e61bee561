package ledgerbook

// Embedded, file-backed Repository implementation, one bucket per
// resource type, the durable backend alongside the in-memory store.
// Serializes with encoding/json against the struct tags every domain
// type already carries (see DESIGN.md for why not protobuf).

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// boltTable is a generic Repository backed by one bbolt bucket. Records
// are addressed by a caller-supplied key encoder since bbolt keys are
// raw bytes and I may be a composite struct.
type boltTable[I comparable, M Model[I]] struct {
	db         *bbolt.DB
	bucket     []byte
	encodeKey  func(I) []byte
	newModel   func() M
	appendOnly bool
	resource   string
}

func newBoltTable[I comparable, M Model[I]](db *bbolt.DB, bucket string, encodeKey func(I) []byte, newModel func() M, appendOnly bool) (*boltTable[I, M], error) {
	t := &boltTable[I, M]{
		db:         db,
		bucket:     []byte(bucket),
		encodeKey:  encodeKey,
		newModel:   newModel,
		appendOnly: appendOnly,
		resource:   bucket,
	}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(t.bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return t, nil
}

func (t *boltTable[I, M]) Insert(ctx context.Context, model M) (M, error) {
	var zero M
	id := model.RecordID()
	key := t.encodeKey(id)
	err := t.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(t.bucket)
		if b.Get(key) != nil {
			return NewDuplicateResourceError(t.resource)
		}
		data, err := json.Marshal(model)
		if err != nil {
			return NewResourceError(err)
		}
		return b.Put(key, data)
	})
	if err != nil {
		return zero, err
	}
	return model, nil
}

func (t *boltTable[I, M]) Get(ctx context.Context, ids []I) ([]M, error) {
	var out []M
	err := t.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(t.bucket)
		if ids == nil {
			return b.ForEach(func(k, v []byte) error {
				m := t.newModel()
				if err := json.Unmarshal(v, m); err != nil {
					return NewResourceError(err)
				}
				out = append(out, m)
				return nil
			})
		}
		seen := make(map[I]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			v := b.Get(t.encodeKey(id))
			if v == nil {
				continue
			}
			m := t.newModel()
			if err := json.Unmarshal(v, m); err != nil {
				return NewResourceError(err)
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []M{}
	}
	return out, nil
}

func (t *boltTable[I, M]) Search(ctx context.Context, domainExpression string) ([]M, error) {
	clauses := ParseDomainExpression(domainExpression)
	var out []M
	err := t.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(t.bucket)
		return b.ForEach(func(k, v []byte) error {
			m := t.newModel()
			if err := json.Unmarshal(v, m); err != nil {
				return NewResourceError(err)
			}
			if m.MatchesSearch(clauses) {
				out = append(out, m)
			}
			return nil
		})
	})
	return out, err
}

func (t *boltTable[I, M]) Save(ctx context.Context, model M) (int, error) {
	id := model.RecordID()
	key := t.encodeKey(id)
	affected := 0
	err := t.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(t.bucket)
		if b.Get(key) == nil {
			return nil
		}
		data, err := json.Marshal(model)
		if err != nil {
			return NewResourceError(err)
		}
		affected = 1
		return b.Put(key, data)
	})
	return affected, err
}

func (t *boltTable[I, M]) Delete(ctx context.Context, id I) error {
	if t.appendOnly {
		return errAppendOnly(t.resource)
	}
	return t.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(t.bucket).Delete(t.encodeKey(id))
	})
}

func (t *boltTable[I, M]) Archive(ctx context.Context, id I) error {
	if t.appendOnly {
		return errAppendOnly(t.resource)
	}
	return t.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(t.bucket)
		key := t.encodeKey(id)
		if b.Get(key) == nil {
			return NewResourceNotFoundError(t.resource)
		}
		return b.Put(archivedKey(key), []byte{1})
	})
}

func (t *boltTable[I, M]) Unarchive(ctx context.Context, id I) error {
	if t.appendOnly {
		return errAppendOnly(t.resource)
	}
	return t.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(t.bucket)
		key := t.encodeKey(id)
		if b.Get(key) == nil {
			return NewResourceNotFoundError(t.resource)
		}
		return b.Delete(archivedKey(key))
	})
}

func archivedKey(key []byte) []byte {
	return append([]byte("archived:"), key...)
}

// --- key encoders for the identifier types used across the module ---

func encodeUUIDKey[T interface{ String() string }](id T) []byte {
	return []byte(id.String())
}

func encodeJournalTransactionKey(k JournalTransactionKey) []byte {
	return []byte(fmt.Sprintf("%s@%020d", k.JournalID, k.Timestamp.UnixMicro()))
}

func encodeLedgerEntryKey(k LedgerEntryKey) []byte {
	return []byte(fmt.Sprintf("%s@%020d", k.LedgerID, k.Timestamp.UnixMicro()))
}

func encodeExternalAccountTransactionKey(k ExternalAccountTransactionKey) []byte {
	return []byte(fmt.Sprintf("%s@%020d", k.AccountID, k.Timestamp.UnixMicro()))
}
