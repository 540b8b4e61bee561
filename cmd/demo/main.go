package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"ledgerbook"
)

func main() {
	fmt.Println("🏦 Double-Entry Ledger Book Demo")
	fmt.Println("===================================")

	ctx := context.Background()
	engine, err := ledgerbook.NewAccountEngine(ledgerbook.Config{Backend: ledgerbook.BackendMemory})
	if err != nil {
		log.Fatalf("failed to create account engine: %v", err)
	}
	defer engine.Close()

	// Step 1: Chart of accounts
	fmt.Println("\n📊 Step 1: Building the Chart of Accounts")
	root, err := engine.GeneralLedger.CreateLedger(ctx, ledgerbook.Intermediate, nil, "Root", "0", "USD")
	if err != nil {
		log.Fatalf("failed to create root ledger: %v", err)
	}
	cash, err := engine.GeneralLedger.CreateLedger(ctx, ledgerbook.Leaf, &root.ID, "Cash", "1000", "USD")
	if err != nil {
		log.Fatalf("failed to create cash ledger: %v", err)
	}
	revenue, err := engine.GeneralLedger.CreateLedger(ctx, ledgerbook.Leaf, &root.ID, "Revenue", "4000", "USD")
	if err != nil {
		log.Fatalf("failed to create revenue ledger: %v", err)
	}
	receivablesControl, err := engine.GeneralLedger.CreateLedger(ctx, ledgerbook.Derived, &root.ID, "Accounts Receivable Control", "1200", "USD")
	if err != nil {
		log.Fatalf("failed to create receivables control ledger: %v", err)
	}
	fmt.Println("✅ Chart of accounts built: Root, Cash, Revenue, Accounts Receivable Control")

	// Step 2: General journal — post a cash sale
	fmt.Println("\n💰 Step 2: Posting a General-Journal Transaction")
	generalJournal, err := engine.GeneralLedger.CreateJournal(ctx, &ledgerbook.Journal{
		Name: "General Journal", Code: "GJ", JournalType: ledgerbook.GeneralJournalType,
	})
	if err != nil {
		log.Fatalf("failed to create general journal: %v", err)
	}

	saleTimestamp := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	_, err = engine.GeneralJournal.CreateGeneralTransaction(ctx, generalJournal.ID, saleTimestamp, "Cash sale of consulting services",
		[]*ledgerbook.GeneralTransactionLine{
			{DrLedgerID: cash.ID, CrLedgerID: revenue.ID, Amount: mustAmount("2500.00")},
		})
	if err != nil {
		log.Fatalf("failed to create general transaction: %v", err)
	}
	if _, err := engine.Posting.PostTransaction(ctx, ledgerbook.JournalTransactionKey{JournalID: generalJournal.ID, Timestamp: saleTimestamp}); err != nil {
		log.Fatalf("failed to post general transaction: %v", err)
	}
	fmt.Println("✅ $2,500.00 cash sale posted: Dr Cash / Cr Revenue")

	// Step 3: Subsidiary ledger for accounts receivable
	fmt.Println("\n📒 Step 3: Opening a Subsidiary Ledger")
	subsidiary, err := engine.Subsidiary.CreateSubsidiaryLedger(ctx, "Customer Receivables", receivablesControl.ID)
	if err != nil {
		log.Fatalf("failed to create subsidiary ledger: %v", err)
	}
	customer, err := engine.Subsidiary.CreateAccount(ctx, subsidiary.ID, "CUSTOMER", "CUST-0001", time.Now())
	if err != nil {
		log.Fatalf("failed to create customer account: %v", err)
	}
	clearing, err := engine.Subsidiary.CreateAccount(ctx, subsidiary.ID, "CLEARING", "CLEAR-0001", time.Now())
	if err != nil {
		log.Fatalf("failed to create clearing account: %v", err)
	}
	fmt.Printf("✅ Subsidiary ledger opened with customer account %s\n", customer.AccountNo)

	// Step 4: Special journal — invoice a customer on credit
	fmt.Println("\n🧾 Step 4: Special-Journal Two-Phase Posting")
	template, err := engine.SpecialJournal.CreateJournalTemplate(ctx, "Sales Journal Template")
	if err != nil {
		log.Fatalf("failed to create template: %v", err)
	}
	columns, err := engine.SpecialJournal.CreateJournalTemplateColumns(ctx, []*ledgerbook.TemplateColumn{
		{TemplateID: template.ID, Sequence: mustSequence(1), Name: "Sales", ColumnType: ledgerbook.LedgerDrCrColumn, DrLedgerID: &receivablesControl.ID, CrLedgerID: &revenue.ID},
	})
	if err != nil {
		log.Fatalf("failed to create template columns: %v", err)
	}
	salesJournal, err := engine.GeneralLedger.CreateJournal(ctx, &ledgerbook.Journal{
		Name: "Sales Journal", Code: "SJ", JournalType: ledgerbook.SpecialJournal,
		ControlLedgerID: &receivablesControl.ID, TemplateID: &template.ID,
	})
	if err != nil {
		log.Fatalf("failed to create sales journal: %v", err)
	}

	invoiceTimestamp := time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC)
	_, err = engine.SpecialJournal.CreateSpecialTransaction(ctx, salesJournal.ID, invoiceTimestamp, "Invoice CUST-0001", template.ID, "INV",
		[]*ledgerbook.SpecialTransactionColumn{
			{TemplateColumnID: columns[0].ID, Sequence: mustSequence(1), Kind: ledgerbook.LedgerDrCrColumn, Amount: mustAmount("900.00"), LedgerDrID: &receivablesControl.ID, LedgerCrID: &revenue.ID},
			{TemplateColumnID: columns[0].ID, Sequence: mustSequence(1), Kind: ledgerbook.AccountDrColumn, Amount: mustAmount("900.00"), AccountID: &customer.ID},
			{TemplateColumnID: columns[0].ID, Sequence: mustSequence(1), Kind: ledgerbook.AccountCrColumn, Amount: mustAmount("900.00"), AccountID: &clearing.ID},
		})
	if err != nil {
		log.Fatalf("failed to create special transaction: %v", err)
	}

	invoiceKey := ledgerbook.JournalTransactionKey{JournalID: salesJournal.ID, Timestamp: invoiceTimestamp}
	if _, err := engine.Posting.PostToAccount(ctx, invoiceKey); err != nil {
		log.Fatalf("failed to post special transaction to subsidiary account: %v", err)
	}
	if _, err := engine.Posting.PostGeneralLedger(ctx, salesJournal.ID, []ledgerbook.JournalTransactionKey{invoiceKey}); err != nil {
		log.Fatalf("failed to roll up special journal: %v", err)
	}
	fmt.Println("✅ Special journal posted to subsidiary account and rolled up to the general ledger")

	// Step 5: Read back the ledger entries
	fmt.Println("\n📖 Step 5: Reading Posted Ledger Entries")
	revenueEntries, err := engine.Ledger.JournalEntries(ctx, revenue.ID)
	if err != nil {
		log.Fatalf("failed to read revenue ledger entries: %v", err)
	}
	for _, e := range revenueEntries {
		fmt.Printf("   %s side, amount %s, journal_ref %s\n", e.Side, e.Amount, e.JournalRef)
	}

	// Step 6: Audit the posting invariants
	fmt.Println("\n🔍 Step 6: Auditing Posting Invariants")
	lineReport, err := engine.Audit.AuditGeneralLines(ctx)
	if err != nil {
		log.Fatalf("failed to audit general lines: %v", err)
	}
	fmt.Printf("✅ Audited %d posted general lines, clean=%t\n", lineReport.LinesChecked, lineReport.Clean())

	fmt.Println("\n🎉 Demo completed successfully!")
	fmt.Println("===================================")
}

func mustAmount(s string) ledgerbook.Amount {
	a, err := ledgerbook.ParseAmount(s)
	if err != nil {
		log.Fatalf("invalid demo amount %q: %v", s, err)
	}
	return a
}

func mustSequence(n int) ledgerbook.Sequence {
	s, err := ledgerbook.NewSequence(n)
	if err != nil {
		log.Fatalf("invalid demo sequence %d: %v", n, err)
	}
	return s
}
