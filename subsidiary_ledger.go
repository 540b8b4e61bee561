package ledgerbook

// Subsidiary ledger: a set of external (party) accounts whose
// aggregate balance equals a Derived control account in the chart.
// The referenced ledger_id must exist and be Derived before a
// subsidiary ledger is created against it.

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SubsidiaryLedger is 1:1 with its control ledger.
type SubsidiaryLedger struct {
	ID       SubsidiaryLedgerID `json:"id"`
	Name     string             `json:"name"`
	LedgerID LedgerID           `json:"ledger_id"`
}

func (m *SubsidiaryLedger) RecordID() SubsidiaryLedgerID { return m.ID }
func (m *SubsidiaryLedger) MatchesSearch(clauses map[string]string) bool {
	return matchString(clauses, "ledger_id", m.LedgerID.String())
}

// ExternalAccount is a party account inside a subsidiary ledger.
type ExternalAccount struct {
	ID                 ExternalAccountID  `json:"id"`
	SubsidiaryLedgerID SubsidiaryLedgerID `json:"subsidiary_ledger_id"`
	EntityTypeCode     string             `json:"entity_type_code"`
	AccountNo          string             `json:"account_no"`
	DateOpened         time.Time          `json:"date_opened"`
}

func (m *ExternalAccount) RecordID() ExternalAccountID { return m.ID }
func (m *ExternalAccount) MatchesSearch(clauses map[string]string) bool {
	return matchString(clauses, "subsidiary_ledger_id", m.SubsidiaryLedgerID.String())
}

// SubsidiaryLedgerService manages subsidiary ledgers and their accounts.
type SubsidiaryLedgerService struct {
	ledgers      Repository[LedgerID, *Ledger]
	subsidiaries Repository[SubsidiaryLedgerID, *SubsidiaryLedger]
	accounts     Repository[ExternalAccountID, *ExternalAccount]
	log          *zap.Logger
}

func NewSubsidiaryLedgerService(
	ledgers Repository[LedgerID, *Ledger],
	subsidiaries Repository[SubsidiaryLedgerID, *SubsidiaryLedger],
	accounts Repository[ExternalAccountID, *ExternalAccount],
	log *zap.Logger,
) *SubsidiaryLedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubsidiaryLedgerService{ledgers: ledgers, subsidiaries: subsidiaries, accounts: accounts, log: log}
}

// CreateSubsidiaryLedger opens a subsidiary ledger against a Derived control ledger.
func (s *SubsidiaryLedgerService) CreateSubsidiaryLedger(ctx context.Context, name string, ledgerID LedgerID) (*SubsidiaryLedger, error) {
	rows, err := s.ledgers.Get(ctx, []LedgerID{ledgerID})
	if err != nil {
		return nil, NewResourceError(err)
	}
	if len(rows) == 0 {
		return nil, NewEmptyRecordError(fmt.Sprintf("ledger id: %s", ledgerID))
	}
	if rows[0].Kind != Derived {
		return nil, NewValidationError("ledger is not a Derived ledger")
	}

	sub := &SubsidiaryLedger{ID: NewSubsidiaryLedgerID(), Name: name, LedgerID: ledgerID}
	created, err := s.subsidiaries.Insert(ctx, sub)
	if err != nil {
		return nil, NewResourceError(err)
	}
	s.log.Info("subsidiary ledger created", zap.String("subsidiary_ledger_id", created.ID.String()), zap.String("ledger_id", ledgerID.String()))
	return created, nil
}

// GetSubsidiaryLedgers fetches subsidiary ledgers by id.
func (s *SubsidiaryLedgerService) GetSubsidiaryLedgers(ctx context.Context, ids []SubsidiaryLedgerID) ([]*SubsidiaryLedger, error) {
	rows, err := s.subsidiaries.Get(ctx, ids)
	if err != nil {
		return nil, NewResourceError(err)
	}
	return rows, nil
}

// CreateAccount opens a new external account inside a subsidiary ledger.
func (s *SubsidiaryLedgerService) CreateAccount(ctx context.Context, subsidiaryLedgerID SubsidiaryLedgerID, entityTypeCode, accountNo string, dateOpened time.Time) (*ExternalAccount, error) {
	subs, err := s.subsidiaries.Get(ctx, []SubsidiaryLedgerID{subsidiaryLedgerID})
	if err != nil {
		return nil, NewResourceError(err)
	}
	if len(subs) == 0 {
		return nil, NewEmptyRecordError(fmt.Sprintf("subsidiary ledger id: %s", subsidiaryLedgerID))
	}

	account := &ExternalAccount{
		ID:                 NewExternalAccountID(),
		SubsidiaryLedgerID: subsidiaryLedgerID,
		EntityTypeCode:     entityTypeCode,
		AccountNo:          accountNo,
		DateOpened:         dateOpened,
	}
	created, err := s.accounts.Insert(ctx, account)
	if err != nil {
		return nil, NewResourceError(err)
	}
	return created, nil
}

// GetAccounts fetches external accounts by id.
func (s *SubsidiaryLedgerService) GetAccounts(ctx context.Context, ids []ExternalAccountID) ([]*ExternalAccount, error) {
	rows, err := s.accounts.Get(ctx, ids)
	if err != nil {
		return nil, NewResourceError(err)
	}
	return rows, nil
}
