package ledgerbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubsidiaryLedgerRequiresDerivedControl(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	root, err := engine.GeneralLedger.CreateLedger(ctx, Intermediate, nil, "Root", "0", "USD")
	require.NoError(t, err)
	cash, err := engine.GeneralLedger.CreateLedger(ctx, Leaf, &root.ID, "Cash", "1000", "USD")
	require.NoError(t, err)

	_, err = engine.Subsidiary.CreateSubsidiaryLedger(ctx, "Customers", cash.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "ledger is not a Derived ledger")

	control, err := engine.GeneralLedger.CreateLedger(ctx, Derived, &root.ID, "Receivables Control", "1200", "USD")
	require.NoError(t, err)

	sub, err := engine.Subsidiary.CreateSubsidiaryLedger(ctx, "Customers", control.ID)
	require.NoError(t, err)
	assert.Equal(t, control.ID, sub.LedgerID)
}

func TestCreateAccountInSubsidiaryLedger(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	root, err := engine.GeneralLedger.CreateLedger(ctx, Intermediate, nil, "Root", "0", "USD")
	require.NoError(t, err)
	control, err := engine.GeneralLedger.CreateLedger(ctx, Derived, &root.ID, "Receivables Control", "1200", "USD")
	require.NoError(t, err)
	sub, err := engine.Subsidiary.CreateSubsidiaryLedger(ctx, "Customers", control.ID)
	require.NoError(t, err)

	account, err := engine.Subsidiary.CreateAccount(ctx, sub.ID, "CUSTOMER", "CUST-0001", time.Now())
	require.NoError(t, err)
	assert.Equal(t, sub.ID, account.SubsidiaryLedgerID)

	accounts, err := engine.Subsidiary.GetAccounts(ctx, []ExternalAccountID{account.ID})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "CUST-0001", accounts[0].AccountNo)
}
