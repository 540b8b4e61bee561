package ledgerbook

// Primitive identifier and value types shared by every component: typed
// UUIDs, composite keys, fixed-length codes, and the debit/credit tag.
// No business logic lives here — just the vocabulary the rest of the
// package is built from.

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ----------------------------------------------------------------------------
// 🪪 Identifiers ---------------------------------------------------------------
// ----------------------------------------------------------------------------

// LedgerID identifies a node in the chart of accounts.
type LedgerID uuid.UUID

func NewLedgerID() LedgerID { return LedgerID(uuid.New()) }
func (id LedgerID) String() string { return uuid.UUID(id).String() }
func (id LedgerID) IsNil() bool { return id == LedgerID{} }

// GeneralLedgerID identifies the book itself (the root aggregate).
type GeneralLedgerID uuid.UUID

func NewGeneralLedgerID() GeneralLedgerID { return GeneralLedgerID(uuid.New()) }
func (id GeneralLedgerID) String() string { return uuid.UUID(id).String() }

// SubsidiaryLedgerID identifies a subsidiary ledger.
type SubsidiaryLedgerID uuid.UUID

func NewSubsidiaryLedgerID() SubsidiaryLedgerID { return SubsidiaryLedgerID(uuid.New()) }
func (id SubsidiaryLedgerID) String() string { return uuid.UUID(id).String() }

// ExternalAccountID identifies a party account inside a subsidiary ledger.
type ExternalAccountID uuid.UUID

func NewExternalAccountID() ExternalAccountID { return ExternalAccountID(uuid.New()) }
func (id ExternalAccountID) String() string { return uuid.UUID(id).String() }

// JournalID identifies a journal (general or special).
type JournalID uuid.UUID

func NewJournalID() JournalID { return JournalID(uuid.New()) }
func (id JournalID) String() string { return uuid.UUID(id).String() }

// TemplateID identifies a special-journal column template.
type TemplateID uuid.UUID

func NewTemplateID() TemplateID { return TemplateID(uuid.New()) }
func (id TemplateID) String() string { return uuid.UUID(id).String() }

// TemplateColumnID identifies one column definition within a template.
type TemplateColumnID uuid.UUID

func NewTemplateColumnID() TemplateColumnID { return TemplateColumnID(uuid.New()) }
func (id TemplateColumnID) String() string { return uuid.UUID(id).String() }

// PeriodID identifies a fiscal year.
type PeriodID uuid.UUID

func NewPeriodID() PeriodID { return PeriodID(uuid.New()) }
func (id PeriodID) String() string { return uuid.UUID(id).String() }

// InterimPeriodID identifies a sub-period within a fiscal year.
type InterimPeriodID uuid.UUID

func NewInterimPeriodID() InterimPeriodID { return InterimPeriodID(uuid.New()) }
func (id InterimPeriodID) String() string { return uuid.UUID(id).String() }

// ColumnTotalID identifies a Phase-2 roll-up record.
type ColumnTotalID uuid.UUID

func NewColumnTotalID() ColumnTotalID { return ColumnTotalID(uuid.New()) }
func (id ColumnTotalID) String() string { return uuid.UUID(id).String() }

// ----------------------------------------------------------------------------
// 🔑 Composite keys -------------------------------------------------------------
// ----------------------------------------------------------------------------

// JournalTransactionKey is the identity of any journal transaction header,
// general or special: (journal_id, timestamp).
type JournalTransactionKey struct {
	JournalID JournalID
	Timestamp time.Time
}

func (k JournalTransactionKey) String() string {
	return fmt.Sprintf("%s@%s", k.JournalID, k.Timestamp.Format(time.RFC3339Nano))
}

// LedgerEntryKey is the identity of a ledger entry: (ledger_id, timestamp).
type LedgerEntryKey struct {
	LedgerID  LedgerID
	Timestamp time.Time
}

func (k LedgerEntryKey) String() string {
	return fmt.Sprintf("%s@%s", k.LedgerID, k.Timestamp.Format(time.RFC3339Nano))
}

// ExternalAccountTransactionKey is the identity of an external-account
// posting: (account_id, timestamp).
type ExternalAccountTransactionKey struct {
	AccountID ExternalAccountID
	Timestamp time.Time
}

func (k ExternalAccountTransactionKey) String() string {
	return fmt.Sprintf("%s@%s", k.AccountID, k.Timestamp.Format(time.RFC3339Nano))
}

// ----------------------------------------------------------------------------
// 💲 Monetary amounts -----------------------------------------------------------
// ----------------------------------------------------------------------------

// Amount is an exact, sign-inclusive fixed-point decimal. Aliasing
// decimal.Decimal rather than wrapping it keeps Add/Sub/Equal/IsZero
// available directly on every Amount value.
type Amount = decimal.Decimal

// ParseAmount parses a decimal string into an Amount.
func ParseAmount(s string) (Amount, error) {
	a, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, NewValidationError(fmt.Sprintf("invalid amount %q: %v", s, err))
	}
	return a, nil
}

// ----------------------------------------------------------------------------
// 🔤 Fixed-length codes ---------------------------------------------------------
// ----------------------------------------------------------------------------

// FixedCode is a bounded-length ASCII code, runtime-checked against its
// bound since Go has no const-generic byte arrays. The models keep ledger
// numbers, currency codes and entity-type codes as plain strings; they
// are not passed through FixedCode.
type FixedCode struct {
	value    string
	maxLen   int
}

// NewFixedCode validates value against maxLen and rejects non-ASCII input.
func NewFixedCode(value string, maxLen int) (FixedCode, error) {
	if len(value) == 0 {
		return FixedCode{}, NewValidationError("code must not be empty")
	}
	if len(value) > maxLen {
		return FixedCode{}, NewValidationError(fmt.Sprintf("code %q exceeds max length %d", value, maxLen))
	}
	for i := 0; i < len(value); i++ {
		if value[i] > 127 {
			return FixedCode{}, NewValidationError(fmt.Sprintf("code %q is not ASCII", value))
		}
	}
	return FixedCode{value: value, maxLen: maxLen}, nil
}

func (c FixedCode) String() string { return c.value }

// ----------------------------------------------------------------------------
// 🔢 Sequence ---------------------------------------------------------------
// ----------------------------------------------------------------------------

// Sequence is a strictly positive column/ordering position.
type Sequence int

// NewSequence rejects n <= 0.
func NewSequence(n int) (Sequence, error) {
	if n <= 0 {
		return 0, NewValidationError(fmt.Sprintf("sequence must be positive, got %d", n))
	}
	return Sequence(n), nil
}

// ----------------------------------------------------------------------------
// ➕➖ Debit / Credit ---------------------------------------------------------
// ----------------------------------------------------------------------------

type DrCr string

const (
	Dr DrCr = "DR"
	Cr DrCr = "CR"
)

// ----------------------------------------------------------------------------
// 🧾 Ledger transaction type codes ---------------------------------------------
// ----------------------------------------------------------------------------

// LedgerXactTypeCode tags the kind of movement a ledger entry records.
// LL is the only code the posting engine itself produces (ledger-to-ledger);
// the type is a plain string and other values are not validated.
type LedgerXactTypeCode string

const LedgerToLedger LedgerXactTypeCode = "LL"

// ----------------------------------------------------------------------------
// 📎 Posting references -------------------------------------------------------
// ----------------------------------------------------------------------------

// PostingRef is the opaque token that roundtrips a posted journal row to
// the exact ledger entry it produced.
type PostingRef struct {
	Key       LedgerEntryKey
	AccountID LedgerID
}

// AccountPostingRef is the subsidiary-account analog of PostingRef.
type AccountPostingRef struct {
	Key ExternalAccountTransactionKey
}
