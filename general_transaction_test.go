package ledgerbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTwoLeafLedgers(t *testing.T, ctx context.Context, engine *AccountEngine) (cash, revenue *Ledger) {
	t.Helper()
	root, err := engine.GeneralLedger.CreateLedger(ctx, Intermediate, nil, "Root", "0", "USD")
	require.NoError(t, err)
	cash, err = engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Cash", "1000", "USD")
	require.NoError(t, err)
	revenue, err = engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Revenue", "4000", "USD")
	require.NoError(t, err)
	return cash, revenue
}

func TestCreateGeneralTransactionOnlyCarriesItsOwnLines(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	cash, revenue := seedTwoLeafLedgers(t, ctx, engine)

	journal, err := engine.GeneralLedger.CreateJournal(ctx, &Journal{Name: "General", Code: "GJ", JournalType: GeneralJournalType})
	require.NoError(t, err)

	t1 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	_, err = engine.GeneralJournal.CreateGeneralTransaction(ctx, journal.ID, t1, "first", []*GeneralTransactionLine{
		{DrLedgerID: cash.ID, CrLedgerID: revenue.ID, Amount: mustAmountT(t, "100.00")},
	})
	require.NoError(t, err)
	_, err = engine.GeneralJournal.CreateGeneralTransaction(ctx, journal.ID, t2, "second", []*GeneralTransactionLine{
		{DrLedgerID: cash.ID, CrLedgerID: revenue.ID, Amount: mustAmountT(t, "50.00")},
		{DrLedgerID: cash.ID, CrLedgerID: revenue.ID, Amount: mustAmountT(t, "25.00")},
	})
	require.NoError(t, err)

	results, err := engine.GeneralJournal.GetJournalTransactions(ctx, []JournalTransactionKey{
		{JournalID: journal.ID, Timestamp: t1},
		{JournalID: journal.ID, Timestamp: t2},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		if r.Timestamp.Equal(t1) {
			assert.Len(t, r.Lines, 1)
		} else {
			assert.Len(t, r.Lines, 2)
		}
	}
}

func TestPostTransactionPostsAllPendingLines(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	cash, revenue := seedTwoLeafLedgers(t, ctx, engine)

	journal, err := engine.GeneralLedger.CreateJournal(ctx, &Journal{Name: "General", Code: "GJ", JournalType: GeneralJournalType})
	require.NoError(t, err)

	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err = engine.GeneralJournal.CreateGeneralTransaction(ctx, journal.ID, ts, "sale", []*GeneralTransactionLine{
		{DrLedgerID: cash.ID, CrLedgerID: revenue.ID, Amount: mustAmountT(t, "100.00")},
	})
	require.NoError(t, err)

	key := JournalTransactionKey{JournalID: journal.ID, Timestamp: ts}
	ok, err := engine.Posting.PostTransaction(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	txns, err := engine.GeneralJournal.GetJournalTransactions(ctx, []JournalTransactionKey{key})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Len(t, txns[0].Lines, 1)
	assert.Equal(t, Posted, txns[0].Lines[0].State)
	assert.NotNil(t, txns[0].Lines[0].DrPostingRef)
	assert.NotNil(t, txns[0].Lines[0].CrPostingRef)
}

func TestPostTransactionRejectsRepost(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	cash, revenue := seedTwoLeafLedgers(t, ctx, engine)

	journal, err := engine.GeneralLedger.CreateJournal(ctx, &Journal{Name: "General", Code: "GJ", JournalType: GeneralJournalType})
	require.NoError(t, err)

	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err = engine.GeneralJournal.CreateGeneralTransaction(ctx, journal.ID, ts, "sale", []*GeneralTransactionLine{
		{DrLedgerID: cash.ID, CrLedgerID: revenue.ID, Amount: mustAmountT(t, "100.00")},
	})
	require.NoError(t, err)

	key := JournalTransactionKey{JournalID: journal.ID, Timestamp: ts}
	_, err = engine.Posting.PostTransaction(ctx, key)
	require.NoError(t, err)

	_, err = engine.Posting.PostTransaction(ctx, key)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no pending lines to post")
}

func TestPostedTransactionReadableFromLedgerService(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	cash, revenue := seedTwoLeafLedgers(t, ctx, engine)

	journal, err := engine.GeneralLedger.CreateJournal(ctx, &Journal{Name: "General", Code: "GJ", JournalType: GeneralJournalType})
	require.NoError(t, err)

	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err = engine.GeneralJournal.CreateGeneralTransaction(ctx, journal.ID, ts, "sale", []*GeneralTransactionLine{
		{DrLedgerID: cash.ID, CrLedgerID: revenue.ID, Amount: mustAmountT(t, "100.00")},
	})
	require.NoError(t, err)
	key := JournalTransactionKey{JournalID: journal.ID, Timestamp: ts}
	_, err = engine.Posting.PostTransaction(ctx, key)
	require.NoError(t, err)

	revenueEntries, err := engine.Ledger.JournalEntries(ctx, revenue.ID)
	require.NoError(t, err)
	require.Len(t, revenueEntries, 1)
	assert.Equal(t, Cr, revenueEntries[0].Side)

	cashEntries, err := engine.Ledger.JournalEntries(ctx, cash.ID)
	require.NoError(t, err)
	require.Len(t, cashEntries, 1)
	assert.Equal(t, Dr, cashEntries[0].Side)
	assert.True(t, cashEntries[0].Amount.Equal(mustAmountT(t, "100.00")))
}

func mustAmountT(t *testing.T, s string) Amount {
	t.Helper()
	a, err := ParseAmount(s)
	require.NoError(t, err)
	return a
}
