package ledgerbook

// Posting engine: the pure coordinator that turns Pending journal rows
// into ledger entries.
//
// The roll-up invariant is that a ColumnTotal equals the sum across
// every Posted transaction in the batch, so the totals accumulation
// below sums every Pending contribution per sequence rather than
// stopping at the first match.
//
// A roll-up batch gets exactly one SpecialTransactionSummary row and,
// if it has any non-zero columns, exactly one derived general-journal
// transaction carrying one line per non-zero column; both are keyed by
// the same summary timestamp but live in separate tables, so inserting
// the summary once and the general transaction once never collide.

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// PostingEngine coordinates General and Special journal posting. It
// holds no state of its own beyond its repositories and collaborators.
type PostingEngine struct {
	journals        Repository[JournalID, *Journal]
	templateColumns Repository[TemplateColumnID, *TemplateColumn]

	generalLines Repository[GeneralLineID, *GeneralTransactionLine]

	specialColumns Repository[ColumnRowID, *SpecialTransactionColumn]
	columnTotals   Repository[ColumnTotalID, *ColumnTotal]
	specialTotals  Repository[JournalTransactionKey, *SpecialTransactionSummary]

	accountTxns Repository[ExternalAccountTransactionKey, *ExternalAccountTransaction]

	entries Repository[LedgerEntryKey, *LedgerEntry]
	pairs   Repository[LedgerEntryKey, *LedgerLedgerPair]

	general *GeneralJournalService

	clock Clock
	log   *zap.Logger
}

// NewPostingEngine wires the engine to every repository and collaborator
// service it needs.
func NewPostingEngine(
	journals Repository[JournalID, *Journal],
	templateColumns Repository[TemplateColumnID, *TemplateColumn],
	generalLines Repository[GeneralLineID, *GeneralTransactionLine],
	specialColumns Repository[ColumnRowID, *SpecialTransactionColumn],
	columnTotals Repository[ColumnTotalID, *ColumnTotal],
	specialTotals Repository[JournalTransactionKey, *SpecialTransactionSummary],
	accountTxns Repository[ExternalAccountTransactionKey, *ExternalAccountTransaction],
	entries Repository[LedgerEntryKey, *LedgerEntry],
	pairs Repository[LedgerEntryKey, *LedgerLedgerPair],
	general *GeneralJournalService,
	clock Clock,
	log *zap.Logger,
) *PostingEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostingEngine{
		journals: journals, templateColumns: templateColumns,
		generalLines:   generalLines,
		specialColumns: specialColumns, columnTotals: columnTotals,
		specialTotals: specialTotals,
		accountTxns:   accountTxns,
		entries:       entries, pairs: pairs,
		general: general,
		clock:   clock, log: log,
	}
}

// PostTransaction posts every Pending line of the general transaction
// keyed by id, in place.
//
// Re-invoking on a transaction with no Pending lines left (i.e. one
// already fully posted) is rejected rather than silently succeeding.
func (e *PostingEngine) PostTransaction(ctx context.Context, id JournalTransactionKey) (bool, error) {
	lines, err := e.generalLinesForKey(ctx, id)
	if err != nil {
		return false, err
	}
	pending := make([]*GeneralTransactionLine, 0, len(lines))
	for _, l := range lines {
		if l.State == Pending {
			pending = append(pending, l)
		}
	}
	if len(pending) == 0 {
		return false, NewValidationError(fmt.Sprintf("transaction %s has no pending lines to post", id))
	}

	for _, line := range pending {
		key := LedgerEntryKey{LedgerID: line.CrLedgerID, Timestamp: line.Timestamp}
		entry := &LedgerEntry{
			LedgerID:           key.LedgerID,
			Timestamp:          key.Timestamp,
			LedgerXactTypeCode: LedgerToLedger,
			Amount:             line.Amount,
			JournalRef:         id,
		}
		if _, err := e.entries.Insert(ctx, entry); err != nil {
			return false, NewResourceError(err)
		}
		pair := &LedgerLedgerPair{LedgerID: key.LedgerID, Timestamp: key.Timestamp, LedgerDrID: line.DrLedgerID}
		if _, err := e.pairs.Insert(ctx, pair); err != nil {
			return false, NewResourceError(err)
		}

		line.CrPostingRef = &PostingRef{Key: key, AccountID: line.CrLedgerID}
		line.DrPostingRef = &PostingRef{Key: key, AccountID: line.DrLedgerID}
		line.State = Posted
		if _, err := e.generalLines.Save(ctx, line); err != nil {
			return false, NewResourceError(err)
		}
	}

	e.log.Info("general transaction posted", zap.String("journal_id", id.JournalID.String()), zap.Int("lines", len(pending)))
	return true, nil
}

func (e *PostingEngine) generalLinesForKey(ctx context.Context, key JournalTransactionKey) ([]*GeneralTransactionLine, error) {
	candidates, err := e.generalLines.Search(ctx, fmt.Sprintf("journal_id=%s", key.JournalID))
	if err != nil {
		return nil, NewResourceError(err)
	}
	out := make([]*GeneralTransactionLine, 0, len(candidates))
	for _, l := range candidates {
		if l.Timestamp.Equal(key.Timestamp) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (e *PostingEngine) specialColumnsForKey(ctx context.Context, key JournalTransactionKey) ([]*SpecialTransactionColumn, error) {
	candidates, err := e.specialColumns.Search(ctx, fmt.Sprintf("journal_id=%s", key.JournalID))
	if err != nil {
		return nil, NewResourceError(err)
	}
	out := make([]*SpecialTransactionColumn, 0, len(candidates))
	for _, c := range candidates {
		if c.Timestamp.Equal(key.Timestamp) {
			out = append(out, c)
		}
	}
	return out, nil
}

// PostToAccount runs Phase 1: posts a special transaction's account
// columns against the subsidiary ledger.
func (e *PostingEngine) PostToAccount(ctx context.Context, id JournalTransactionKey) (bool, error) {
	columns, err := e.specialColumnsForKey(ctx, id)
	if err != nil {
		return false, err
	}

	var sumDr, sumCr Amount
	for _, c := range columns {
		switch c.Kind {
		case AccountDrColumn:
			sumDr = sumDr.Add(c.Amount)
		case AccountCrColumn:
			sumCr = sumCr.Add(c.Amount)
		}
	}
	if sumDr.IsZero() || !sumDr.Equal(sumCr) {
		return false, NewValidationError("the Dr and Cr sides of the transaction must be equal and must be non-zero")
	}

	for _, c := range columns {
		var xactType DrCr
		switch c.Kind {
		case AccountDrColumn:
			xactType = Dr
		case AccountCrColumn:
			xactType = Cr
		default:
			continue
		}
		if c.AccountID == nil {
			return false, NewValidationError(fmt.Sprintf("column sequence %d has no account_id", c.Sequence))
		}
		key := ExternalAccountTransactionKey{AccountID: *c.AccountID, Timestamp: c.Timestamp}
		txn := &ExternalAccountTransaction{AccountID: key.AccountID, Timestamp: key.Timestamp, XactType: xactType, Amount: c.Amount}
		if _, err := e.accountTxns.Insert(ctx, txn); err != nil {
			return false, NewResourceError(err)
		}
		c.AccountPostingRef = &AccountPostingRef{Key: key}
		if _, err := e.specialColumns.Save(ctx, c); err != nil {
			return false, NewResourceError(err)
		}
	}

	e.log.Info("special transaction posted to account", zap.String("journal_id", id.JournalID.String()))
	return true, nil
}

// PostGeneralLedger runs Phase 2: rolls up the selected transactions of
// journalID into the general ledger. ids selects which transactions to
// roll up.
//
// The precondition below refuses to re-roll-up a batch whose columns are
// no longer all Pending.
func (e *PostingEngine) PostGeneralLedger(ctx context.Context, journalID JournalID, ids []JournalTransactionKey) (bool, error) {
	var selected []JournalTransactionKey
	for _, id := range ids {
		if id.JournalID == journalID {
			selected = append(selected, id)
		}
	}

	allColumns := make(map[JournalTransactionKey][]*SpecialTransactionColumn, len(selected))
	for _, id := range selected {
		cols, err := e.specialColumnsForKey(ctx, id)
		if err != nil {
			return false, err
		}
		for _, c := range cols {
			if c.State != Pending {
				return false, NewValidationError(fmt.Sprintf("column sequence %d of transaction %s has already been posted", c.Sequence, id))
			}
		}
		allColumns[id] = cols
	}

	journals, err := e.journals.Get(ctx, []JournalID{journalID})
	if err != nil {
		return false, NewResourceError(err)
	}
	if len(journals) == 0 {
		return false, NewEmptyRecordError(fmt.Sprintf("journal id: %s", journalID))
	}
	journal := journals[0]
	if journal.TemplateID == nil {
		return false, NewUnknownError(fmt.Sprintf("special journal %s has no template", journalID))
	}

	tplCols, err := e.templateColumns.Search(ctx, fmt.Sprintf("template_id=%s", *journal.TemplateID))
	if err != nil {
		return false, NewResourceError(err)
	}
	if len(tplCols) == 0 {
		return false, NewUnknownError(fmt.Sprintf("no template columns found for special journal template: %s", *journal.TemplateID))
	}
	sort.Slice(tplCols, func(i, j int) bool { return tplCols[i].Sequence < tplCols[j].Sequence })

	totals := make(map[Sequence]Amount, len(tplCols))
	for _, tc := range tplCols {
		totals[tc.Sequence] = Amount{}
	}
	for _, cols := range allColumns {
		for _, c := range cols {
			if c.Kind != LedgerDrCrColumn {
				continue
			}
			if _, ok := totals[c.Sequence]; !ok {
				return false, NewValidationError(fmt.Sprintf("column sequence '%d' found in transaction, but is not in template", c.Sequence))
			}
			totals[c.Sequence] = totals[c.Sequence].Add(c.Amount)
		}
	}

	summaryTimestamp := e.clock.Now()
	summaryID := JournalTransactionKey{JournalID: journalID, Timestamp: summaryTimestamp}
	if _, err := e.specialTotals.Insert(ctx, &SpecialTransactionSummary{JournalID: journalID, Timestamp: summaryTimestamp}); err != nil {
		return false, NewResourceError(err)
	}

	var lines []*GeneralTransactionLine
	colTotalsBySequence := make(map[Sequence]*ColumnTotal, len(tplCols))

	for _, tc := range tplCols {
		if tc.ColumnType != LedgerDrCrColumn {
			continue
		}
		total := totals[tc.Sequence]
		if total.IsZero() {
			continue
		}
		if tc.CrLedgerID == nil || tc.DrLedgerID == nil {
			return false, NewValidationError(fmt.Sprintf("template column sequence %d has no dr/cr ledger", tc.Sequence))
		}

		refKey := LedgerEntryKey{LedgerID: *tc.CrLedgerID, Timestamp: summaryTimestamp}
		colTotal := &ColumnTotal{
			ID:           NewColumnTotalID(),
			SummaryID:    summaryID,
			Sequence:     tc.Sequence,
			Amount:       total,
			PostingRefCr: &PostingRef{Key: refKey, AccountID: *tc.CrLedgerID},
			PostingRefDr: &PostingRef{Key: refKey, AccountID: *tc.DrLedgerID},
		}
		if _, err := e.columnTotals.Insert(ctx, colTotal); err != nil {
			return false, NewResourceError(err)
		}
		colTotalsBySequence[tc.Sequence] = colTotal

		lines = append(lines, &GeneralTransactionLine{DrLedgerID: *tc.DrLedgerID, CrLedgerID: *tc.CrLedgerID, Amount: total})
	}

	if len(lines) > 0 {
		if _, err := e.general.CreateGeneralTransaction(ctx, journalID, summaryTimestamp, "special journal roll-up", lines); err != nil {
			return false, NewUnknownError("failed to post roll-up transaction")
		}
		if _, err := e.PostTransaction(ctx, summaryID); err != nil {
			return false, NewUnknownError("failed to post roll-up transaction")
		}
	}

	for sequence, colTotal := range colTotalsBySequence {
		for _, cols := range allColumns {
			for _, c := range cols {
				if c.Kind == LedgerDrCrColumn && c.Sequence == sequence {
					c.ColumnTotalID = &colTotal.ID
					c.State = Posted
					if _, err := e.specialColumns.Save(ctx, c); err != nil {
						return false, NewResourceError(err)
					}
				}
			}
		}
	}

	e.log.Info("special journal rolled up to general ledger", zap.String("journal_id", journalID.String()), zap.Int("transactions", len(selected)))
	return true, nil
}

// GetColumnTotal returns the roll-up total for one posted column sequence.
// Where several of the transaction's columns share the sequence, the
// LedgerDrCr column is the one consulted.
func (e *PostingEngine) GetColumnTotal(ctx context.Context, id JournalTransactionKey, sequence Sequence) (*ColumnTotal, error) {
	cols, err := e.specialColumnsForKey(ctx, id)
	if err != nil {
		return nil, err
	}
	var found *SpecialTransactionColumn
	for _, c := range cols {
		if c.Sequence != sequence {
			continue
		}
		if found == nil || (c.Kind == LedgerDrCrColumn && found.Kind != LedgerDrCrColumn) {
			found = c
		}
	}
	if found == nil {
		return nil, NewEmptyRecordError(fmt.Sprintf("column sequence %d does not exist", sequence))
	}
	if found.State != Posted {
		return nil, NewValidationError(fmt.Sprintf("column %d has not been posted yet", sequence))
	}
	if found.ColumnTotalID == nil {
		return nil, NewValidationError(fmt.Sprintf("column %d has been posted but doesn't contain a column total", sequence))
	}
	rows, err := e.columnTotals.Get(ctx, []ColumnTotalID{*found.ColumnTotalID})
	if err != nil {
		return nil, NewResourceError(err)
	}
	if len(rows) == 0 {
		return nil, NewEmptyRecordError(fmt.Sprintf("column total id: %s", *found.ColumnTotalID))
	}
	return rows[0], nil
}
