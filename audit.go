package ledgerbook

// Auditor is a read-only posting invariant checker: it re-derives ledger
// entries and external-account transactions from the posting refs
// stamped on journal rows and confirms they still agree.

import (
	"context"
	"fmt"
)

// Discrepancy describes one invariant violation found during an audit.
type Discrepancy struct {
	Kind    string
	Detail  string
}

// AuditReport is the outcome of one audit pass.
type AuditReport struct {
	LinesChecked       int
	ColumnsChecked     int
	Discrepancies      []Discrepancy
}

// Clean reports whether the audit found no discrepancies.
func (r *AuditReport) Clean() bool { return len(r.Discrepancies) == 0 }

// Auditor walks posted journal rows and confirms their posting refs
// still resolve to the ledger entries and account transactions they
// claim to.
type Auditor struct {
	generalLines   Repository[GeneralLineID, *GeneralTransactionLine]
	specialColumns Repository[ColumnRowID, *SpecialTransactionColumn]
	entries        Repository[LedgerEntryKey, *LedgerEntry]
	accountTxns    Repository[ExternalAccountTransactionKey, *ExternalAccountTransaction]
}

func NewAuditor(
	generalLines Repository[GeneralLineID, *GeneralTransactionLine],
	specialColumns Repository[ColumnRowID, *SpecialTransactionColumn],
	entries Repository[LedgerEntryKey, *LedgerEntry],
	accountTxns Repository[ExternalAccountTransactionKey, *ExternalAccountTransaction],
) *Auditor {
	return &Auditor{generalLines: generalLines, specialColumns: specialColumns, entries: entries, accountTxns: accountTxns}
}

// AuditGeneralLines checks invariant 1: every Posted general line's
// dr_posting_ref and cr_posting_ref are set and name a ledger entry
// whose (ledger_id, timestamp, amount, journal_ref) matches the line.
func (a *Auditor) AuditGeneralLines(ctx context.Context) (*AuditReport, error) {
	lines, err := a.generalLines.Get(ctx, nil)
	if err != nil {
		return nil, NewResourceError(err)
	}
	report := &AuditReport{}
	for _, line := range lines {
		if line.State != Posted {
			continue
		}
		report.LinesChecked++
		if line.DrPostingRef == nil || line.CrPostingRef == nil {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Kind:   "missing_posting_ref",
				Detail: fmt.Sprintf("line %s is Posted but missing a posting ref", line.ID),
			})
			continue
		}
		entryRows, err := a.entries.Get(ctx, []LedgerEntryKey{line.CrPostingRef.Key})
		if err != nil {
			return nil, NewResourceError(err)
		}
		if len(entryRows) == 0 {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Kind:   "dangling_posting_ref",
				Detail: fmt.Sprintf("line %s's cr_posting_ref names no ledger entry", line.ID),
			})
			continue
		}
		entry := entryRows[0]
		if entry.LedgerID != line.CrLedgerID || !entry.Timestamp.Equal(line.Timestamp) ||
			!entry.Amount.Equal(line.Amount) || entry.JournalRef != (JournalTransactionKey{JournalID: line.JournalID, Timestamp: line.Timestamp}) {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Kind:   "mismatched_entry",
				Detail: fmt.Sprintf("line %s's ledger entry does not match (ledger_id/timestamp/amount/journal_ref)", line.ID),
			})
		}
	}
	return report, nil
}

// AuditAccountColumns checks invariant 2: every Posted AccountDr/AccountCr
// column's account_posting_ref names an external-account transaction row
// whose (account_id, timestamp, xact_type, amount) matches the column.
func (a *Auditor) AuditAccountColumns(ctx context.Context) (*AuditReport, error) {
	columns, err := a.specialColumns.Get(ctx, nil)
	if err != nil {
		return nil, NewResourceError(err)
	}
	report := &AuditReport{}
	for _, col := range columns {
		if col.State != Posted || (col.Kind != AccountDrColumn && col.Kind != AccountCrColumn) {
			continue
		}
		report.ColumnsChecked++
		if col.AccountPostingRef == nil {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Kind:   "missing_account_posting_ref",
				Detail: fmt.Sprintf("column %s is Posted but missing an account posting ref", col.ID),
			})
			continue
		}
		rows, err := a.accountTxns.Get(ctx, []ExternalAccountTransactionKey{col.AccountPostingRef.Key})
		if err != nil {
			return nil, NewResourceError(err)
		}
		if len(rows) == 0 {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Kind:   "dangling_account_posting_ref",
				Detail: fmt.Sprintf("column %s's account_posting_ref names no account transaction", col.ID),
			})
			continue
		}
		txn := rows[0]
		wantType := Dr
		if col.Kind == AccountCrColumn {
			wantType = Cr
		}
		if col.AccountID == nil || txn.AccountID != *col.AccountID || !txn.Timestamp.Equal(col.Timestamp) ||
			txn.XactType != wantType || !txn.Amount.Equal(col.Amount) {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Kind:   "mismatched_account_transaction",
				Detail: fmt.Sprintf("column %s's account transaction does not match (account_id/timestamp/xact_type/amount)", col.ID),
			})
		}
	}
	return report, nil
}

// AuditSpecialTransactionBalance checks invariant 3 for one transaction:
// Σ(AccountDr) = Σ(AccountCr) and both equal the sum of the signed
// LedgerDrCr amounts.
func (a *Auditor) AuditSpecialTransactionBalance(ctx context.Context, key JournalTransactionKey) (*AuditReport, error) {
	all, err := a.specialColumns.Search(ctx, fmt.Sprintf("journal_id=%s", key.JournalID))
	if err != nil {
		return nil, NewResourceError(err)
	}
	var sumDr, sumCr, sumLedger Amount
	for _, c := range all {
		if !c.Timestamp.Equal(key.Timestamp) {
			continue
		}
		switch c.Kind {
		case AccountDrColumn:
			sumDr = sumDr.Add(c.Amount)
		case AccountCrColumn:
			sumCr = sumCr.Add(c.Amount)
		case LedgerDrCrColumn:
			sumLedger = sumLedger.Add(c.Amount)
		}
	}
	report := &AuditReport{ColumnsChecked: len(all)}
	if !sumDr.Equal(sumCr) || !sumDr.Equal(sumLedger) {
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Kind:   "unbalanced_special_transaction",
			Detail: fmt.Sprintf("transaction %s: sum_dr=%s sum_cr=%s sum_ledger=%s", key, sumDr, sumCr, sumLedger),
		})
	}
	return report, nil
}
