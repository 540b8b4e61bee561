package ledgerbook

// Ledger-entry store: the append-only derived record of every posting,
// keyed (ledger_id, timestamp), split into a credit row plus a pair row
// (the debit side is reconstructed, never stored directly).

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LedgerEntry is the credit-side record of a single posting.
type LedgerEntry struct {
	LedgerID           LedgerID              `json:"ledger_id"`
	Timestamp          time.Time             `json:"timestamp"`
	LedgerXactTypeCode LedgerXactTypeCode    `json:"ledger_xact_type_code"`
	Amount             Amount                `json:"amount"`
	JournalRef         JournalTransactionKey `json:"journal_ref"`
}

func (m *LedgerEntry) RecordID() LedgerEntryKey {
	return LedgerEntryKey{LedgerID: m.LedgerID, Timestamp: m.Timestamp}
}
func (m *LedgerEntry) MatchesSearch(clauses map[string]string) bool {
	return matchString(clauses, "ledger_id", m.LedgerID.String())
}

// LedgerLedgerPair is the "the counterpart is another ledger account" pair
// row: the debit side is reconstructed by joining back to it.
type LedgerLedgerPair struct {
	LedgerID   LedgerID  `json:"ledger_id"`
	Timestamp  time.Time `json:"timestamp"`
	LedgerDrID LedgerID  `json:"ledger_dr_id"`
}

func (m *LedgerLedgerPair) RecordID() LedgerEntryKey {
	return LedgerEntryKey{LedgerID: m.LedgerID, Timestamp: m.Timestamp}
}
func (m *LedgerLedgerPair) MatchesSearch(clauses map[string]string) bool {
	return matchString(clauses, "ledger_dr_id", m.LedgerDrID.String())
}

// LedgerAccountPair is the "one side is an external account" pair row.
type LedgerAccountPair struct {
	LedgerID             LedgerID          `json:"ledger_id"`
	Timestamp            time.Time         `json:"timestamp"`
	AccountID            ExternalAccountID `json:"account_id"`
	XactType             DrCr              `json:"xact_type"`
	ExternalXactTypeCode string            `json:"external_xact_type_code"`
}

func (m *LedgerAccountPair) RecordID() LedgerEntryKey {
	return LedgerEntryKey{LedgerID: m.LedgerID, Timestamp: m.Timestamp}
}
func (m *LedgerAccountPair) MatchesSearch(clauses map[string]string) bool {
	return matchString(clauses, "account_id", m.AccountID.String())
}

// ExternalAccountTransaction is the subsidiary-ledger analog of a ledger
// entry, keyed (account_id, timestamp).
type ExternalAccountTransaction struct {
	AccountID ExternalAccountID `json:"account_id"`
	Timestamp time.Time         `json:"timestamp"`
	XactType  DrCr              `json:"xact_type"`
	Amount    Amount            `json:"amount"`
}

func (m *ExternalAccountTransaction) RecordID() ExternalAccountTransactionKey {
	return ExternalAccountTransactionKey{AccountID: m.AccountID, Timestamp: m.Timestamp}
}
func (m *ExternalAccountTransaction) MatchesSearch(clauses map[string]string) bool {
	return matchString(clauses, "account_id", m.AccountID.String())
}

// JournalEntry is what LedgerService.JournalEntries returns: a ledger
// entry reconstructed from either side, tagged with which side it was
// read from.
type JournalEntry struct {
	LedgerID   LedgerID
	Timestamp  LedgerEntryKey
	Amount     Amount
	JournalRef JournalTransactionKey
	Side       DrCr
}

// LedgerEntryStore wraps the three append-only repositories behind the
// by_key / by_ledger_ids / by_dr_ledger finders.
type LedgerEntryStore struct {
	entries Repository[LedgerEntryKey, *LedgerEntry]
	pairs   Repository[LedgerEntryKey, *LedgerLedgerPair]
	accountPairs Repository[LedgerEntryKey, *LedgerAccountPair]
}

func NewLedgerEntryStore(
	entries Repository[LedgerEntryKey, *LedgerEntry],
	pairs Repository[LedgerEntryKey, *LedgerLedgerPair],
	accountPairs Repository[LedgerEntryKey, *LedgerAccountPair],
) *LedgerEntryStore {
	return &LedgerEntryStore{entries: entries, pairs: pairs, accountPairs: accountPairs}
}

// ByKey looks up a single entry by its (ledger_id, timestamp) key.
func (s *LedgerEntryStore) ByKey(ctx context.Context, key LedgerEntryKey) (*LedgerEntry, error) {
	rows, err := s.entries.Get(ctx, []LedgerEntryKey{key})
	if err != nil {
		return nil, NewResourceError(err)
	}
	if len(rows) == 0 {
		return nil, NewEmptyRecordError(fmt.Sprintf("ledger entry key: %s", key))
	}
	return rows[0], nil
}

// ByLedgerIDs returns every entry whose ledger_id (credit side) is among
// the given ledgers.
func (s *LedgerEntryStore) ByLedgerIDs(ctx context.Context, ids []LedgerID) ([]*LedgerEntry, error) {
	all, err := s.entries.Get(ctx, nil)
	if err != nil {
		return nil, NewResourceError(err)
	}
	want := make(map[LedgerID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]*LedgerEntry, 0, len(all))
	for _, e := range all {
		if want[e.LedgerID] {
			out = append(out, e)
		}
	}
	return out, nil
}

// ByDrLedger returns the ledger↔ledger pair rows that name ledgerID as
// the debit side — the counterpart rows the debit-side reconstruction
// joins against.
func (s *LedgerEntryStore) ByDrLedger(ctx context.Context, ledgerID LedgerID) ([]*LedgerLedgerPair, error) {
	rows, err := s.pairs.Search(ctx, fmt.Sprintf("ledger_dr_id=%s", ledgerID))
	if err != nil {
		return nil, NewResourceError(err)
	}
	return rows, nil
}

// LedgerService is the read side of the ledger-entry store plus
// posting-ref resolution.
type LedgerService struct {
	store *LedgerEntryStore
	log   *zap.Logger
}

func NewLedgerService(store *LedgerEntryStore, log *zap.Logger) *LedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerService{store: store, log: log}
}

// JournalEntries returns the journal entries for a ledger: the union of
// credit-side entries naming this ledger and debit-side entries
// reconstructed by joining to the counterpart pair rows.
func (s *LedgerService) JournalEntries(ctx context.Context, ledgerID LedgerID) ([]*JournalEntry, error) {
	credits, err := s.store.ByLedgerIDs(ctx, []LedgerID{ledgerID})
	if err != nil {
		return nil, err
	}
	out := make([]*JournalEntry, 0, len(credits))
	for _, e := range credits {
		out = append(out, &JournalEntry{
			LedgerID:   e.LedgerID,
			Timestamp:  e.RecordID(),
			Amount:     e.Amount,
			JournalRef: e.JournalRef,
			Side:       Cr,
		})
	}

	debitPairs, err := s.store.ByDrLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	for _, pair := range debitPairs {
		creditEntry, err := s.store.ByKey(ctx, pair.RecordID())
		if err != nil {
			return nil, err
		}
		out = append(out, &JournalEntry{
			LedgerID:   ledgerID,
			Timestamp:  creditEntry.RecordID(),
			Amount:     creditEntry.Amount,
			JournalRef: creditEntry.JournalRef,
			Side:       Dr,
		})
	}
	return out, nil
}

// JournalEntryByPostingRef resolves a PostingRef back to the ledger entry
// it names.
func (s *LedgerService) JournalEntryByPostingRef(ctx context.Context, ref PostingRef) (*LedgerEntry, error) {
	return s.store.ByKey(ctx, ref.Key)
}
