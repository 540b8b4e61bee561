package ledgerbook

// General-journal transactions: line-based dr/cr transactions against
// ledger accounts, Pending -> Posted. Each returned transaction carries
// only its own lines, never the whole batch's.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GeneralTransactionHeader is the header row of a general journal
// transaction, keyed by (journal_id, timestamp).
type GeneralTransactionHeader struct {
	JournalID   JournalID `json:"journal_id"`
	Timestamp   time.Time `json:"timestamp"`
	Explanation string    `json:"explanation"`
}

func (m *GeneralTransactionHeader) RecordID() JournalTransactionKey {
	return JournalTransactionKey{JournalID: m.JournalID, Timestamp: m.Timestamp}
}
func (m *GeneralTransactionHeader) MatchesSearch(clauses map[string]string) bool {
	if want, ok := clauses["journal_id"]; ok && want != m.JournalID.String() {
		return false
	}
	return true
}

// GeneralLineID identifies one stored line row. A line is identified
// only by its owning transaction; a line-level key is an implementation
// detail needed so a repository can hold more than one line per
// (journal_id, timestamp).
type GeneralLineID uuid.UUID

func NewGeneralLineID() GeneralLineID { return GeneralLineID(uuid.New()) }
func (id GeneralLineID) String() string { return uuid.UUID(id).String() }

// GeneralTransactionLine is one dr/cr pair within a general transaction.
type GeneralTransactionLine struct {
	ID           GeneralLineID    `json:"id"`
	JournalID    JournalID        `json:"journal_id"`
	Timestamp    time.Time        `json:"timestamp"`
	DrLedgerID   LedgerID         `json:"dr_ledger_id"`
	CrLedgerID   LedgerID         `json:"cr_ledger_id"`
	Amount       Amount           `json:"amount"`
	State        TransactionState `json:"state"`
	DrPostingRef *PostingRef      `json:"dr_posting_ref,omitempty"`
	CrPostingRef *PostingRef      `json:"cr_posting_ref,omitempty"`
}

func (m *GeneralTransactionLine) RecordID() GeneralLineID { return m.ID }
func (m *GeneralTransactionLine) MatchesSearch(clauses map[string]string) bool {
	if want, ok := clauses["journal_id"]; ok && want != m.JournalID.String() {
		return false
	}
	return true
}

// TransactionState is the Pending -> Posted (-> Archived) lifecycle.
type TransactionState string

const (
	Pending  TransactionState = "PENDING"
	Posted   TransactionState = "POSTED"
	Archived TransactionState = "ARCHIVED"
)

// GeneralTransaction is the assembled header + its own lines, returned
// to callers.
type GeneralTransaction struct {
	JournalID   JournalID
	Timestamp   time.Time
	Explanation string
	Lines       []*GeneralTransactionLine
}

// GeneralJournalService is the creation and lookup side of general-journal transactions.
type GeneralJournalService struct {
	ledgers Repository[LedgerID, *Ledger]
	headers Repository[JournalTransactionKey, *GeneralTransactionHeader]
	lines   Repository[GeneralLineID, *GeneralTransactionLine]
}

// NewGeneralJournalService wires the service to its backing repositories.
func NewGeneralJournalService(
	ledgers Repository[LedgerID, *Ledger],
	headers Repository[JournalTransactionKey, *GeneralTransactionHeader],
	lines Repository[GeneralLineID, *GeneralTransactionLine],
) *GeneralJournalService {
	return &GeneralJournalService{ledgers: ledgers, headers: headers, lines: lines}
}

// linesForKey filters the line repository down to one transaction's own
// lines.
func (s *GeneralJournalService) linesForKey(ctx context.Context, key JournalTransactionKey) ([]*GeneralTransactionLine, error) {
	candidates, err := s.lines.Search(ctx, fmt.Sprintf("journal_id=%s", key.JournalID))
	if err != nil {
		return nil, err
	}
	out := make([]*GeneralTransactionLine, 0, len(candidates))
	for _, l := range candidates {
		if l.Timestamp.Equal(key.Timestamp) {
			out = append(out, l)
		}
	}
	return out, nil
}

// CreateGeneralTransaction inserts a header and its lines, all Pending.
func (s *GeneralJournalService) CreateGeneralTransaction(ctx context.Context, journalID JournalID, timestamp time.Time, explanation string, lines []*GeneralTransactionLine) (*GeneralTransaction, error) {
	for _, line := range lines {
		if rows, err := s.ledgers.Get(ctx, []LedgerID{line.DrLedgerID}); err != nil {
			return nil, NewResourceError(err)
		} else if len(rows) == 0 {
			return nil, NewEmptyRecordError(fmt.Sprintf("ledger id: %s", line.DrLedgerID))
		}
		if rows, err := s.ledgers.Get(ctx, []LedgerID{line.CrLedgerID}); err != nil {
			return nil, NewResourceError(err)
		} else if len(rows) == 0 {
			return nil, NewEmptyRecordError(fmt.Sprintf("ledger id: %s", line.CrLedgerID))
		}
	}

	header := &GeneralTransactionHeader{JournalID: journalID, Timestamp: timestamp, Explanation: explanation}
	if _, err := s.headers.Insert(ctx, header); err != nil {
		return nil, NewResourceError(err)
	}

	stored := make([]*GeneralTransactionLine, 0, len(lines))
	for _, line := range lines {
		line.ID = NewGeneralLineID()
		line.JournalID = journalID
		line.Timestamp = timestamp
		line.State = Pending
		line.DrPostingRef = nil
		line.CrPostingRef = nil
		inserted, err := s.lines.Insert(ctx, line)
		if err != nil {
			return nil, NewResourceError(err)
		}
		stored = append(stored, inserted)
	}

	return &GeneralTransaction{JournalID: journalID, Timestamp: timestamp, Explanation: explanation, Lines: stored}, nil
}

// GetJournalTransactions fetches transactions by key; each returned
// transaction carries only its own lines, not the whole batch's.
func (s *GeneralJournalService) GetJournalTransactions(ctx context.Context, keys []JournalTransactionKey) ([]*GeneralTransaction, error) {
	headers, err := s.headers.Get(ctx, keys)
	if err != nil {
		return nil, NewResourceError(err)
	}
	out := make([]*GeneralTransaction, 0, len(headers))
	for _, h := range headers {
		key := JournalTransactionKey{JournalID: h.JournalID, Timestamp: h.Timestamp}
		lines, err := s.linesForKey(ctx, key)
		if err != nil {
			return nil, NewResourceError(err)
		}
		out = append(out, &GeneralTransaction{
			JournalID:   h.JournalID,
			Timestamp:   h.Timestamp,
			Explanation: h.Explanation,
			Lines:       lines,
		})
	}
	return out, nil
}
