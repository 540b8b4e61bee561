package ledgerbook

// In-memory Repository implementation. It is what the demo and the
// test suite run against. Each table is guarded by its own readers-writer
// latch; an operation that touches several tables is not atomic across
// them.

import (
	"context"
	"sync"
)

type memTable[I comparable, M Model[I]] struct {
	mu         sync.RWMutex
	rows       map[I]M
	archived   map[I]bool
	appendOnly bool
	resource   string
}

// newMemTable creates an in-memory table. appendOnly disables
// delete/archive/unarchive for resource types that must never be
// removed once written (ledger entries and their pair rows).
func newMemTable[I comparable, M Model[I]](resource string, appendOnly bool) *memTable[I, M] {
	return &memTable[I, M]{
		rows:       make(map[I]M),
		archived:   make(map[I]bool),
		appendOnly: appendOnly,
		resource:   resource,
	}
}

func (t *memTable[I, M]) Insert(ctx context.Context, model M) (M, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := model.RecordID()
	if _, exists := t.rows[id]; exists {
		var zero M
		return zero, NewDuplicateResourceError(t.resource)
	}
	t.rows[id] = model
	return model, nil
}

func (t *memTable[I, M]) Get(ctx context.Context, ids []I) ([]M, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if ids == nil {
		out := make([]M, 0, len(t.rows))
		for _, m := range t.rows {
			out = append(out, m)
		}
		return out, nil
	}
	seen := make(map[I]bool, len(ids))
	out := make([]M, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if m, ok := t.rows[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (t *memTable[I, M]) Search(ctx context.Context, domainExpression string) ([]M, error) {
	clauses := ParseDomainExpression(domainExpression)
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []M
	for _, m := range t.rows {
		if m.MatchesSearch(clauses) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (t *memTable[I, M]) Save(ctx context.Context, model M) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := model.RecordID()
	if _, exists := t.rows[id]; !exists {
		return 0, nil
	}
	t.rows[id] = model
	return 1, nil
}

func (t *memTable[I, M]) Delete(ctx context.Context, id I) error {
	if t.appendOnly {
		return errAppendOnly(t.resource)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, id)
	delete(t.archived, id)
	return nil
}

func (t *memTable[I, M]) Archive(ctx context.Context, id I) error {
	if t.appendOnly {
		return errAppendOnly(t.resource)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return NewResourceNotFoundError(t.resource)
	}
	t.archived[id] = true
	return nil
}

func (t *memTable[I, M]) Unarchive(ctx context.Context, id I) error {
	if t.appendOnly {
		return errAppendOnly(t.resource)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return NewResourceNotFoundError(t.resource)
	}
	delete(t.archived, id)
	return nil
}
