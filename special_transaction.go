package ledgerbook

// Special-journal transactions: column-wise transactions mediating
// between a subsidiary ledger and a control ledger account.
//
// The four column shapes (LedgerDrCr, Text, AccountDr, AccountCr) are
// modeled as one struct with a discriminant rather than an inheritance
// hierarchy, so long as columns come back in template-sequence order.

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SpecialTransactionHeader is the header row of a special journal
// transaction, keyed by (journal_id, timestamp).
type SpecialTransactionHeader struct {
	JournalID             JournalID          `json:"journal_id"`
	Timestamp             time.Time          `json:"timestamp"`
	Explanation           string             `json:"explanation"`
	TemplateID            TemplateID         `json:"template_id"`
	ExternalXactTypeCode  string             `json:"external_xact_type_code"`
	State                 TransactionState   `json:"state"`
	AccountPostingRef     *AccountPostingRef `json:"account_posting_ref,omitempty"`
}

func (m *SpecialTransactionHeader) RecordID() JournalTransactionKey {
	return JournalTransactionKey{JournalID: m.JournalID, Timestamp: m.Timestamp}
}
func (m *SpecialTransactionHeader) MatchesSearch(clauses map[string]string) bool {
	if want, ok := clauses["journal_id"]; ok && want != m.JournalID.String() {
		return false
	}
	return true
}

// ColumnRowID identifies a single stored column row. A column is
// identified only by its owning transaction and sequence; a row-level
// key is the storage detail that lets more than one column live under
// the same transaction key.
type ColumnRowID uuid.UUID

func NewColumnRowID() ColumnRowID     { return ColumnRowID(uuid.New()) }
func (id ColumnRowID) String() string { return uuid.UUID(id).String() }

// SpecialTransactionColumn is one column value within a special
// transaction. Kind selects which of the variant-specific fields are
// meaningful:
//   - LedgerDrCrColumn: Amount, LedgerDrID, LedgerCrID, ColumnTotalID
//   - TextColumn:       TextValue (Amount is semantically zero)
//   - AccountDrColumn:  Amount, AccountID, AccountPostingRef
//   - AccountCrColumn:  Amount, AccountID, AccountPostingRef
type SpecialTransactionColumn struct {
	ID                ColumnRowID        `json:"id"`
	JournalID         JournalID          `json:"journal_id"`
	Timestamp         time.Time          `json:"timestamp"`
	TemplateColumnID  TemplateColumnID   `json:"template_column_id"`
	Sequence          Sequence           `json:"sequence"`
	Kind              ColumnType         `json:"kind"`
	Amount            Amount             `json:"amount"`
	TextValue         string             `json:"text_value,omitempty"`
	LedgerDrID        *LedgerID          `json:"ledger_dr_id,omitempty"`
	LedgerCrID        *LedgerID          `json:"ledger_cr_id,omitempty"`
	ColumnTotalID     *ColumnTotalID     `json:"column_total_id,omitempty"`
	AccountID         *ExternalAccountID `json:"account_id,omitempty"`
	AccountPostingRef *AccountPostingRef `json:"account_posting_ref,omitempty"`
	State             TransactionState   `json:"state"`
}

func (m *SpecialTransactionColumn) RecordID() ColumnRowID { return m.ID }
func (m *SpecialTransactionColumn) MatchesSearch(clauses map[string]string) bool {
	if want, ok := clauses["journal_id"]; ok && want != m.JournalID.String() {
		return false
	}
	if want, ok := clauses["template_column_id"]; ok && want != m.TemplateColumnID.String() {
		return false
	}
	return true
}

// ColumnTotal is the Phase-2 roll-up record, one per (posted batch,
// template column).
type ColumnTotal struct {
	ID           ColumnTotalID          `json:"id"`
	SummaryID    JournalTransactionKey  `json:"summary_id"`
	Sequence     Sequence               `json:"sequence"`
	Amount       Amount                 `json:"amount"`
	PostingRefCr *PostingRef            `json:"posting_ref_cr,omitempty"`
	PostingRefDr *PostingRef            `json:"posting_ref_dr,omitempty"`
}

func (m *ColumnTotal) RecordID() ColumnTotalID { return m.ID }
func (m *ColumnTotal) MatchesSearch(clauses map[string]string) bool {
	if want, ok := clauses["journal_id"]; ok && want != m.SummaryID.JournalID.String() {
		return false
	}
	return true
}

// SpecialTransactionSummary is the Phase-2 roll-up batch's own header
// row, keyed by the synthetic (journal_id, summary_timestamp) the batch
// is assigned. It anchors the batch's ColumnTotal rows and is distinct
// from the general-journal transaction the roll-up posts into.
type SpecialTransactionSummary struct {
	JournalID JournalID `json:"journal_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *SpecialTransactionSummary) RecordID() JournalTransactionKey {
	return JournalTransactionKey{JournalID: m.JournalID, Timestamp: m.Timestamp}
}
func (m *SpecialTransactionSummary) MatchesSearch(clauses map[string]string) bool {
	if want, ok := clauses["journal_id"]; ok && want != m.JournalID.String() {
		return false
	}
	return true
}

// SpecialTransaction is the assembled header + its own columns.
type SpecialTransaction struct {
	JournalID   JournalID
	Timestamp   time.Time
	Explanation string
	Columns     []*SpecialTransactionColumn
}

// ----------------------------------------------------------------------------
// 🧰 SpecialJournalService -------------------------------------------------------
// ----------------------------------------------------------------------------

// SpecialJournalService is the creation side of special transactions:
// templates, template columns, and the transactions posted against them.
type SpecialJournalService struct {
	journals         Repository[JournalID, *Journal]
	templates        Repository[TemplateID, *Template]
	templateColumns  Repository[TemplateColumnID, *TemplateColumn]
	headers          Repository[JournalTransactionKey, *SpecialTransactionHeader]
	columns          Repository[ColumnRowID, *SpecialTransactionColumn]
}

// NewSpecialJournalService wires the service to its backing repositories.
func NewSpecialJournalService(
	journals Repository[JournalID, *Journal],
	templates Repository[TemplateID, *Template],
	templateColumns Repository[TemplateColumnID, *TemplateColumn],
	headers Repository[JournalTransactionKey, *SpecialTransactionHeader],
	columns Repository[ColumnRowID, *SpecialTransactionColumn],
) *SpecialJournalService {
	return &SpecialJournalService{
		journals:        journals,
		templates:       templates,
		templateColumns: templateColumns,
		headers:         headers,
		columns:         columns,
	}
}

// CreateJournalTemplate registers a new special-journal column layout.
func (s *SpecialJournalService) CreateJournalTemplate(ctx context.Context, name string) (*Template, error) {
	tpl := &Template{ID: NewTemplateID(), Name: name}
	created, err := s.templates.Insert(ctx, tpl)
	if err != nil {
		return nil, NewResourceError(err)
	}
	return created, nil
}

// CreateJournalTemplateColumns appends columns to a template.
func (s *SpecialJournalService) CreateJournalTemplateColumns(ctx context.Context, columns []*TemplateColumn) ([]*TemplateColumn, error) {
	result := make([]*TemplateColumn, 0, len(columns))
	for _, col := range columns {
		if col.ID == (TemplateColumnID{}) {
			col.ID = NewTemplateColumnID()
		}
		created, err := s.templateColumns.Insert(ctx, col)
		if err != nil {
			return nil, NewResourceError(err)
		}
		result = append(result, created)
	}
	return result, nil
}

// columnsForKey filters the column repository down to one transaction's
// own columns.
func (s *SpecialJournalService) columnsForKey(ctx context.Context, key JournalTransactionKey) ([]*SpecialTransactionColumn, error) {
	candidates, err := s.columns.Search(ctx, fmt.Sprintf("journal_id=%s", key.JournalID))
	if err != nil {
		return nil, err
	}
	out := make([]*SpecialTransactionColumn, 0, len(candidates))
	for _, c := range candidates {
		if c.Timestamp.Equal(key.Timestamp) {
			out = append(out, c)
		}
	}
	return out, nil
}

// orderedTemplateColumns fetches a template's columns sorted by sequence.
func (s *SpecialJournalService) orderedTemplateColumns(ctx context.Context, templateID TemplateID) ([]*TemplateColumn, error) {
	cols, err := s.templateColumns.Search(ctx, fmt.Sprintf("template_id=%s", templateID))
	if err != nil {
		return nil, err
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Sequence < cols[j].Sequence })
	return cols, nil
}

// CreateSpecialTransaction inserts a header and its columns, all Pending.
func (s *SpecialJournalService) CreateSpecialTransaction(
	ctx context.Context,
	journalID JournalID,
	timestamp time.Time,
	explanation string,
	templateID TemplateID,
	externalXactTypeCode string,
	columns []*SpecialTransactionColumn,
) (*SpecialTransaction, error) {
	header := &SpecialTransactionHeader{
		JournalID:            journalID,
		Timestamp:            timestamp,
		Explanation:          explanation,
		TemplateID:           templateID,
		ExternalXactTypeCode: externalXactTypeCode,
		State:                Pending,
	}
	if _, err := s.headers.Insert(ctx, header); err != nil {
		return nil, NewResourceError(err)
	}

	stored := make([]*SpecialTransactionColumn, 0, len(columns))
	for _, col := range columns {
		col.ID = NewColumnRowID()
		col.JournalID = journalID
		col.Timestamp = timestamp
		col.State = Pending
		col.ColumnTotalID = nil
		if col.Kind == AccountDrColumn || col.Kind == AccountCrColumn {
			col.AccountPostingRef = nil
		}
		inserted, err := s.columns.Insert(ctx, col)
		if err != nil {
			return nil, NewResourceError(err)
		}
		stored = append(stored, inserted)
	}

	return &SpecialTransaction{JournalID: journalID, Timestamp: timestamp, Explanation: explanation, Columns: stored}, nil
}

// GetSpecialTransactions fetches each transaction's own columns by its
// (journal_id, timestamp), never the union of every fetched header's columns.
func (s *SpecialJournalService) GetSpecialTransactions(ctx context.Context, keys []JournalTransactionKey) ([]*SpecialTransaction, error) {
	headers, err := s.headers.Get(ctx, keys)
	if err != nil {
		return nil, NewResourceError(err)
	}
	out := make([]*SpecialTransaction, 0, len(headers))
	for _, h := range headers {
		key := JournalTransactionKey{JournalID: h.JournalID, Timestamp: h.Timestamp}
		cols, err := s.orderedColumns(ctx, key, h.TemplateID)
		if err != nil {
			return nil, err
		}
		out = append(out, &SpecialTransaction{
			JournalID:   h.JournalID,
			Timestamp:   h.Timestamp,
			Explanation: h.Explanation,
			Columns:     cols,
		})
	}
	return out, nil
}

// GetSpecialTransactionColumns returns one transaction's columns in
// template-sequence order.
func (s *SpecialJournalService) GetSpecialTransactionColumns(ctx context.Context, key JournalTransactionKey) ([]*SpecialTransactionColumn, error) {
	headers, err := s.headers.Get(ctx, []JournalTransactionKey{key})
	if err != nil {
		return nil, NewResourceError(err)
	}
	if len(headers) == 0 {
		return nil, NewEmptyRecordError(fmt.Sprintf("journal id: %s", key.JournalID))
	}
	return s.orderedColumns(ctx, key, headers[0].TemplateID)
}

// orderedColumns returns one transaction's own columns in template-sequence
// order.
func (s *SpecialJournalService) orderedColumns(ctx context.Context, key JournalTransactionKey, templateID TemplateID) ([]*SpecialTransactionColumn, error) {
	tplCols, err := s.orderedTemplateColumns(ctx, templateID)
	if err != nil {
		return nil, NewResourceError(err)
	}
	own, err := s.columnsForKey(ctx, key)
	if err != nil {
		return nil, NewResourceError(err)
	}
	bySeq := make(map[Sequence][]*SpecialTransactionColumn, len(own))
	for _, c := range own {
		bySeq[c.Sequence] = append(bySeq[c.Sequence], c)
	}
	out := make([]*SpecialTransactionColumn, 0, len(own))
	for _, tc := range tplCols {
		out = append(out, bySeq[tc.Sequence]...)
	}
	return out, nil
}

// GetSubsidiaryTransactionsByJournal returns every special transaction
// posted through a journal.
func (s *SpecialJournalService) GetSubsidiaryTransactionsByJournal(ctx context.Context, journalID JournalID) ([]*SpecialTransaction, error) {
	records, err := s.headers.Search(ctx, fmt.Sprintf("journal_id=%s", journalID))
	if err != nil {
		return nil, NewResourceError(err)
	}
	keys := make([]JournalTransactionKey, 0, len(records))
	for _, r := range records {
		keys = append(keys, JournalTransactionKey{JournalID: r.JournalID, Timestamp: r.Timestamp})
	}
	return s.GetSpecialTransactions(ctx, keys)
}
