package ledgerbook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *AccountEngine {
	t.Helper()
	engine, err := NewAccountEngine(Config{Backend: BackendMemory})
	require.NoError(t, err)
	return engine
}

func TestCreateLedgerChart(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	root, err := engine.GeneralLedger.CreateLedger(ctx, Intermediate, nil, "Root", "0", "USD")
	require.NoError(t, err)
	assert.True(t, root.IsRoot())

	cash, err := engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Cash", "1000", "USD")
	require.NoError(t, err)
	assert.Equal(t, Leaf, cash.Kind)
	assert.Equal(t, root.ID, *cash.ParentID)
}

func TestCreateLedgerRejectsNonIntermediateParent(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	root, err := engine.GeneralLedger.CreateLedger(ctx, Intermediate, nil, "Root", "0", "USD")
	require.NoError(t, err)
	cash, err := engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Cash", "1000", "USD")
	require.NoError(t, err)

	_, err = engine.GeneralLedger.CreateLedger(ctx, Leaf, &cash.ID, "Petty Cash", "1001", "USD")
	require.Error(t, err)
	assert.EqualError(t, err, "parent ledger is not an Intermediate Ledger")
}

func TestCreateLedgerRejectsDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	root, err := engine.GeneralLedger.CreateLedger(ctx, Intermediate, nil, "Root", "0", "USD")
	require.NoError(t, err)
	_, err = engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Cash", "1000", "USD")
	require.NoError(t, err)

	_, err = engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Cash Again", "1000", "USD")
	require.Error(t, err)
	assert.EqualError(t, err, "duplicate ledger number: 1000")
}

func TestFindByNumber(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	root, err := engine.GeneralLedger.CreateLedger(ctx, Intermediate, nil, "Root", "0", "USD")
	require.NoError(t, err)
	cash, err := engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Cash", "1000", "USD")
	require.NoError(t, err)

	found, err := engine.GeneralLedger.FindByNumber(ctx, "1000")
	require.NoError(t, err)
	assert.Equal(t, cash.ID, found.ID)

	_, err = engine.GeneralLedger.FindByNumber(ctx, "9999")
	assert.Error(t, err)
}

func TestCreateJournalRequiresControlAndTemplateForSpecial(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	_, err := engine.GeneralLedger.CreateJournal(ctx, &Journal{
		Name: "Sales", Code: "SJ", JournalType: SpecialJournal,
	})
	require.Error(t, err)

	general, err := engine.GeneralLedger.CreateJournal(ctx, &Journal{
		Name: "General", Code: "GJ", JournalType: GeneralJournalType,
	})
	require.NoError(t, err)
	assert.NotEqual(t, JournalID{}, general.ID)
}

func TestCreateJournalRejectsDuplicateCode(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	_, err := engine.GeneralLedger.CreateJournal(ctx, &Journal{Name: "General", Code: "GJ", JournalType: GeneralJournalType})
	require.NoError(t, err)

	_, err = engine.GeneralLedger.CreateJournal(ctx, &Journal{Name: "General 2", Code: "GJ", JournalType: GeneralJournalType})
	require.Error(t, err)
}
