package ledgerbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSpecialTransaction(t *testing.T, ctx context.Context, engine *AccountEngine, journal *Journal, tplCol *TemplateColumn, control, revenue *Ledger, ts time.Time, amount string, accountA, accountB ExternalAccountID) JournalTransactionKey {
	t.Helper()
	_, err := engine.SpecialJournal.CreateSpecialTransaction(ctx, journal.ID, ts, "invoice", *journal.TemplateID, "INV",
		[]*SpecialTransactionColumn{
			{TemplateColumnID: tplCol.ID, Sequence: tplCol.Sequence, Kind: LedgerDrCrColumn, Amount: mustAmountT(t, amount), LedgerDrID: &control.ID, LedgerCrID: &revenue.ID},
			{TemplateColumnID: tplCol.ID, Sequence: tplCol.Sequence, Kind: AccountDrColumn, Amount: mustAmountT(t, amount), AccountID: &accountA},
			{TemplateColumnID: tplCol.ID, Sequence: tplCol.Sequence, Kind: AccountCrColumn, Amount: mustAmountT(t, amount), AccountID: &accountB},
		})
	require.NoError(t, err)
	return JournalTransactionKey{JournalID: journal.ID, Timestamp: ts}
}

func seedSubsidiaryAccounts(t *testing.T, ctx context.Context, engine *AccountEngine, control *Ledger) (a, b ExternalAccountID) {
	t.Helper()
	sub, err := engine.Subsidiary.CreateSubsidiaryLedger(ctx, "Customers", control.ID)
	require.NoError(t, err)
	accA, err := engine.Subsidiary.CreateAccount(ctx, sub.ID, "CUSTOMER", "CUST-A", time.Now())
	require.NoError(t, err)
	accB, err := engine.Subsidiary.CreateAccount(ctx, sub.ID, "CUSTOMER", "CUST-B", time.Now())
	require.NoError(t, err)
	return accA.ID, accB.ID
}

// seedSalesJournalTwoColumns builds a template with two LedgerDrCr
// columns sharing the same control ledger but crediting two different
// revenue ledgers, so a roll-up batch exercises more than one non-zero
// column at once.
func seedSalesJournalTwoColumns(t *testing.T, ctx context.Context, engine *AccountEngine) (journal *Journal, col1, col2 *TemplateColumn, control, consulting, products *Ledger) {
	t.Helper()
	root, err := engine.GeneralLedger.CreateLedger(ctx, Intermediate, nil, "Root", "0", "USD")
	require.NoError(t, err)
	control, err = engine.GeneralLedger.CreateLedger(ctx, Derived, &root.ID, "Receivables Control", "1200", "USD")
	require.NoError(t, err)
	consulting, err = engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Consulting Revenue", "4000", "USD")
	require.NoError(t, err)
	products, err = engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Product Revenue", "4100", "USD")
	require.NoError(t, err)

	template, err := engine.SpecialJournal.CreateJournalTemplate(ctx, "Sales Journal")
	require.NoError(t, err)
	seq1, err := NewSequence(1)
	require.NoError(t, err)
	seq2, err := NewSequence(2)
	require.NoError(t, err)
	cols, err := engine.SpecialJournal.CreateJournalTemplateColumns(ctx, []*TemplateColumn{
		{TemplateID: template.ID, Sequence: seq1, Name: "Consulting", ColumnType: LedgerDrCrColumn, DrLedgerID: &control.ID, CrLedgerID: &consulting.ID},
		{TemplateID: template.ID, Sequence: seq2, Name: "Products", ColumnType: LedgerDrCrColumn, DrLedgerID: &control.ID, CrLedgerID: &products.ID},
	})
	require.NoError(t, err)

	journal, err = engine.GeneralLedger.CreateJournal(ctx, &Journal{
		Name: "Sales Journal", Code: "SJ", JournalType: SpecialJournal,
		ControlLedgerID: &control.ID, TemplateID: &template.ID,
	})
	require.NoError(t, err)
	return journal, cols[0], cols[1], control, consulting, products
}

func TestPostToAccountRejectsUnbalancedColumns(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	journal, tplCol, control, revenue := seedSalesJournal(t, ctx, engine)
	accA, accB := seedSubsidiaryAccounts(t, ctx, engine, control)

	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err := engine.SpecialJournal.CreateSpecialTransaction(ctx, journal.ID, ts, "invoice", *journal.TemplateID, "INV",
		[]*SpecialTransactionColumn{
			{TemplateColumnID: tplCol.ID, Sequence: tplCol.Sequence, Kind: LedgerDrCrColumn, Amount: mustAmountT(t, "100.00"), LedgerDrID: &control.ID, LedgerCrID: &revenue.ID},
			{TemplateColumnID: tplCol.ID, Sequence: tplCol.Sequence, Kind: AccountDrColumn, Amount: mustAmountT(t, "100.00"), AccountID: &accA},
			{TemplateColumnID: tplCol.ID, Sequence: tplCol.Sequence, Kind: AccountCrColumn, Amount: mustAmountT(t, "40.00"), AccountID: &accB},
		})
	require.NoError(t, err)

	_, err = engine.Posting.PostToAccount(ctx, JournalTransactionKey{JournalID: journal.ID, Timestamp: ts})
	require.Error(t, err)
	assert.EqualError(t, err, "the Dr and Cr sides of the transaction must be equal and must be non-zero")
}

func TestPostToAccountPostsBalancedColumns(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	journal, tplCol, control, revenue := seedSalesJournal(t, ctx, engine)
	accA, accB := seedSubsidiaryAccounts(t, ctx, engine, control)

	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	key := seedSpecialTransaction(t, ctx, engine, journal, tplCol, control, revenue, ts, "100.00", accA, accB)

	ok, err := engine.Posting.PostToAccount(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	report, err := engine.Audit.AuditAccountColumns(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestPostGeneralLedgerSumsEveryContributingTransaction(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	journal, tplCol, control, revenue := seedSalesJournal(t, ctx, engine)
	accA, accB := seedSubsidiaryAccounts(t, ctx, engine, control)

	ts1 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	ts2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	key1 := seedSpecialTransaction(t, ctx, engine, journal, tplCol, control, revenue, ts1, "100.00", accA, accB)
	key2 := seedSpecialTransaction(t, ctx, engine, journal, tplCol, control, revenue, ts2, "250.00", accA, accB)

	_, err := engine.Posting.PostToAccount(ctx, key1)
	require.NoError(t, err)
	_, err = engine.Posting.PostToAccount(ctx, key2)
	require.NoError(t, err)

	ok, err := engine.Posting.PostGeneralLedger(ctx, journal.ID, []JournalTransactionKey{key1, key2})
	require.NoError(t, err)
	assert.True(t, ok)

	total, err := engine.Posting.GetColumnTotal(ctx, key1, tplCol.Sequence)
	require.NoError(t, err)
	assert.True(t, total.Amount.Equal(mustAmountT(t, "350.00")), "expected roll-up to sum both transactions, got %s", total.Amount)

	revenueEntries, err := engine.Ledger.JournalEntries(ctx, revenue.ID)
	require.NoError(t, err)
	require.Len(t, revenueEntries, 1)
	assert.True(t, revenueEntries[0].Amount.Equal(mustAmountT(t, "350.00")))
}

func TestPostGeneralLedgerPostsMultipleNonZeroColumnsInOneBatch(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	journal, col1, col2, control, consulting, products := seedSalesJournalTwoColumns(t, ctx, engine)
	accA, accB := seedSubsidiaryAccounts(t, ctx, engine, control)

	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err := engine.SpecialJournal.CreateSpecialTransaction(ctx, journal.ID, ts, "invoice", *journal.TemplateID, "INV",
		[]*SpecialTransactionColumn{
			{TemplateColumnID: col1.ID, Sequence: col1.Sequence, Kind: LedgerDrCrColumn, Amount: mustAmountT(t, "100.00"), LedgerDrID: &control.ID, LedgerCrID: &consulting.ID},
			{TemplateColumnID: col2.ID, Sequence: col2.Sequence, Kind: LedgerDrCrColumn, Amount: mustAmountT(t, "250.00"), LedgerDrID: &control.ID, LedgerCrID: &products.ID},
			{TemplateColumnID: col1.ID, Sequence: col1.Sequence, Kind: AccountDrColumn, Amount: mustAmountT(t, "350.00"), AccountID: &accA},
			{TemplateColumnID: col1.ID, Sequence: col1.Sequence, Kind: AccountCrColumn, Amount: mustAmountT(t, "350.00"), AccountID: &accB},
		})
	require.NoError(t, err)

	key := JournalTransactionKey{JournalID: journal.ID, Timestamp: ts}
	_, err = engine.Posting.PostToAccount(ctx, key)
	require.NoError(t, err)

	ok, err := engine.Posting.PostGeneralLedger(ctx, journal.ID, []JournalTransactionKey{key})
	require.NoError(t, err)
	assert.True(t, ok)

	total1, err := engine.Posting.GetColumnTotal(ctx, key, col1.Sequence)
	require.NoError(t, err)
	assert.True(t, total1.Amount.Equal(mustAmountT(t, "100.00")))

	total2, err := engine.Posting.GetColumnTotal(ctx, key, col2.Sequence)
	require.NoError(t, err)
	assert.True(t, total2.Amount.Equal(mustAmountT(t, "250.00")))

	consultingEntries, err := engine.Ledger.JournalEntries(ctx, consulting.ID)
	require.NoError(t, err)
	require.Len(t, consultingEntries, 1)
	assert.True(t, consultingEntries[0].Amount.Equal(mustAmountT(t, "100.00")))

	productsEntries, err := engine.Ledger.JournalEntries(ctx, products.ID)
	require.NoError(t, err)
	require.Len(t, productsEntries, 1)
	assert.True(t, productsEntries[0].Amount.Equal(mustAmountT(t, "250.00")))
}

func TestPostGeneralLedgerRejectsAlreadyPostedColumns(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	journal, tplCol, control, revenue := seedSalesJournal(t, ctx, engine)
	accA, accB := seedSubsidiaryAccounts(t, ctx, engine, control)

	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	key := seedSpecialTransaction(t, ctx, engine, journal, tplCol, control, revenue, ts, "100.00", accA, accB)
	_, err := engine.Posting.PostToAccount(ctx, key)
	require.NoError(t, err)

	_, err = engine.Posting.PostGeneralLedger(ctx, journal.ID, []JournalTransactionKey{key})
	require.NoError(t, err)

	_, err = engine.Posting.PostGeneralLedger(ctx, journal.ID, []JournalTransactionKey{key})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has already been posted")
}

func TestGetColumnTotalRejectsUnknownSequence(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)
	journal, tplCol, control, revenue := seedSalesJournal(t, ctx, engine)
	accA, accB := seedSubsidiaryAccounts(t, ctx, engine, control)

	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	key := seedSpecialTransaction(t, ctx, engine, journal, tplCol, control, revenue, ts, "100.00", accA, accB)

	otherSeq, err := NewSequence(2)
	require.NoError(t, err)
	_, err = engine.Posting.GetColumnTotal(ctx, key, otherSeq)
	require.Error(t, err)
}
