package ledgerbook

// Chart of accounts and the GeneralLedgerService facade that owns
// ledgers, journals, and periods together under one repository bound.

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ----------------------------------------------------------------------------
// 🏦 General ledger & chart of accounts ----------------------------------------
// ----------------------------------------------------------------------------

// LedgerKind tags the role a ledger node plays in the chart.
type LedgerKind string

const (
	Intermediate LedgerKind = "INTERMEDIATE"
	Leaf         LedgerKind = "LEAF"
	Derived      LedgerKind = "DERIVED"
)

// GeneralLedger is the singleton root aggregate of the book.
type GeneralLedger struct {
	ID           GeneralLedgerID `json:"id"`
	Name         string          `json:"name"`
	CurrencyCode string          `json:"currency_code,omitempty"`
	Root         LedgerID        `json:"root"`
}

func (m *GeneralLedger) RecordID() GeneralLedgerID { return m.ID }
func (m *GeneralLedger) MatchesSearch(clauses map[string]string) bool {
	return matchString(clauses, "name", m.Name)
}

// Ledger is a node in the chart of accounts.
type Ledger struct {
	ID           LedgerID   `json:"id"`
	Number       string     `json:"number"`
	Name         string     `json:"name"`
	Kind         LedgerKind `json:"kind"`
	ParentID     *LedgerID  `json:"parent_id,omitempty"`
	CurrencyCode string     `json:"currency_code,omitempty"`
}

func (m *Ledger) RecordID() LedgerID { return m.ID }
func (m *Ledger) MatchesSearch(clauses map[string]string) bool {
	return matchString(clauses, "number", m.Number) && matchString(clauses, "name", m.Name)
}

// IsRoot reports whether this ledger is the chart's singleton root.
func (m *Ledger) IsRoot() bool { return m.ParentID == nil }

// LedgerIntermediate, LedgerLeaf, LedgerDerived are the kind-specific
// extension rows written alongside the base Ledger row.
type LedgerIntermediate struct{ ID LedgerID `json:"id"` }

func (m *LedgerIntermediate) RecordID() LedgerID                      { return m.ID }
func (m *LedgerIntermediate) MatchesSearch(map[string]string) bool    { return true }

type LedgerLeaf struct{ ID LedgerID `json:"id"` }

func (m *LedgerLeaf) RecordID() LedgerID                   { return m.ID }
func (m *LedgerLeaf) MatchesSearch(map[string]string) bool { return true }

type LedgerDerived struct{ ID LedgerID `json:"id"` }

func (m *LedgerDerived) RecordID() LedgerID                   { return m.ID }
func (m *LedgerDerived) MatchesSearch(map[string]string) bool { return true }

func matchString(clauses map[string]string, key, value string) bool {
	want, ok := clauses[key]
	if !ok {
		return true
	}
	return want == value
}

// ----------------------------------------------------------------------------
// 🧰 GeneralLedgerService -------------------------------------------------------
// ----------------------------------------------------------------------------

// GeneralLedgerService exposes the book itself plus create/read for
// ledgers, journals, and periods.
type GeneralLedgerService struct {
	generalLedgers Repository[GeneralLedgerID, *GeneralLedger]
	ledgers        Repository[LedgerID, *Ledger]
	intermediates  Repository[LedgerID, *LedgerIntermediate]
	leaves         Repository[LedgerID, *LedgerLeaf]
	deriveds       Repository[LedgerID, *LedgerDerived]
	journals       Repository[JournalID, *Journal]
	periods        Repository[PeriodID, *Period]
	interimPeriods Repository[InterimPeriodID, *InterimPeriod]
	clock          Clock
	log            *zap.Logger
}

// NewGeneralLedgerService wires the service to its backing repositories.
func NewGeneralLedgerService(
	generalLedgers Repository[GeneralLedgerID, *GeneralLedger],
	ledgers Repository[LedgerID, *Ledger],
	intermediates Repository[LedgerID, *LedgerIntermediate],
	leaves Repository[LedgerID, *LedgerLeaf],
	deriveds Repository[LedgerID, *LedgerDerived],
	journals Repository[JournalID, *Journal],
	periods Repository[PeriodID, *Period],
	interimPeriods Repository[InterimPeriodID, *InterimPeriod],
	clock Clock,
	log *zap.Logger,
) *GeneralLedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GeneralLedgerService{
		generalLedgers: generalLedgers,
		ledgers:        ledgers,
		intermediates:  intermediates,
		leaves:         leaves,
		deriveds:       deriveds,
		journals:       journals,
		periods:        periods,
		interimPeriods: interimPeriods,
		clock:          clock,
		log:            log,
	}
}

// GetGeneralLedger returns the singleton book row.
func (s *GeneralLedgerService) GetGeneralLedger(ctx context.Context) (*GeneralLedger, error) {
	rows, err := s.generalLedgers.Get(ctx, nil)
	if err != nil {
		return nil, NewResourceError(err)
	}
	if len(rows) == 0 {
		return nil, NewEmptyRecordError("general ledger")
	}
	return rows[0], nil
}

// UpdateGeneralLedger updates the book's name and currency code.
func (s *GeneralLedgerService) UpdateGeneralLedger(ctx context.Context, name, currencyCode string) (*GeneralLedger, error) {
	gl, err := s.GetGeneralLedger(ctx)
	if err != nil {
		return nil, err
	}
	gl.Name = name
	gl.CurrencyCode = currencyCode
	if _, err := s.generalLedgers.Save(ctx, gl); err != nil {
		return nil, NewResourceError(err)
	}
	return gl, nil
}

// CreateLedger adds a new node to the chart of accounts.
func (s *GeneralLedgerService) CreateLedger(ctx context.Context, kind LedgerKind, parentID *LedgerID, name, number, currencyCode string) (*Ledger, error) {
	if parentID == nil {
		if number != "0" {
			return nil, NewValidationError("parent ledger is not an Intermediate Ledger")
		}
	} else {
		parents, err := s.ledgers.Get(ctx, []LedgerID{*parentID})
		if err != nil {
			return nil, NewResourceError(err)
		}
		if len(parents) == 0 || parents[0].Kind != Intermediate {
			return nil, NewValidationError("parent ledger is not an Intermediate Ledger")
		}
	}

	if number != "0" {
		existing, err := s.ledgers.Search(ctx, fmt.Sprintf("number=%s", number))
		if err != nil {
			return nil, NewResourceError(err)
		}
		if len(existing) > 0 {
			return nil, NewValidationError(fmt.Sprintf("duplicate ledger number: %s", number))
		}
	}

	ledger := &Ledger{
		ID:           NewLedgerID(),
		Number:       number,
		Name:         name,
		Kind:         kind,
		ParentID:     parentID,
		CurrencyCode: currencyCode,
	}
	if _, err := s.ledgers.Insert(ctx, ledger); err != nil {
		return nil, NewResourceError(err)
	}

	var extErr error
	switch kind {
	case Intermediate:
		_, extErr = s.intermediates.Insert(ctx, &LedgerIntermediate{ID: ledger.ID})
	case Leaf:
		_, extErr = s.leaves.Insert(ctx, &LedgerLeaf{ID: ledger.ID})
	case Derived:
		_, extErr = s.deriveds.Insert(ctx, &LedgerDerived{ID: ledger.ID})
	}
	if extErr != nil {
		return nil, NewResourceError(extErr)
	}

	s.log.Info("ledger created", zap.String("ledger_id", ledger.ID.String()), zap.String("number", number), zap.String("kind", string(kind)))
	return ledger, nil
}

// GetLedgers fetches ledgers by id.
func (s *GeneralLedgerService) GetLedgers(ctx context.Context, ids []LedgerID) ([]*Ledger, error) {
	rows, err := s.ledgers.Get(ctx, ids)
	if err != nil {
		return nil, NewResourceError(err)
	}
	return rows, nil
}

// FindByNumber looks up a ledger by its chart number.
func (s *GeneralLedgerService) FindByNumber(ctx context.Context, number string) (*Ledger, error) {
	rows, err := s.ledgers.Search(ctx, fmt.Sprintf("number=%s", number))
	if err != nil {
		return nil, NewResourceError(err)
	}
	if len(rows) == 0 {
		return nil, NewResourceNotFoundError(fmt.Sprintf("ledger number %s", number))
	}
	return rows[0], nil
}

// CreateJournal registers a new general or special journal.
func (s *GeneralLedgerService) CreateJournal(ctx context.Context, j *Journal) (*Journal, error) {
	existing, err := s.journals.Search(ctx, fmt.Sprintf("code=%s", j.Code))
	if err != nil {
		return nil, NewResourceError(err)
	}
	if len(existing) > 0 {
		return nil, NewDuplicateResourceError(fmt.Sprintf("journal code %s", j.Code))
	}
	if j.ID == (JournalID{}) {
		j.ID = NewJournalID()
	}
	if j.JournalType == SpecialJournal && (j.ControlLedgerID == nil || j.TemplateID == nil) {
		return nil, NewValidationError("special journal requires both control_ledger_id and template_id")
	}
	created, err := s.journals.Insert(ctx, j)
	if err != nil {
		return nil, NewResourceError(err)
	}
	s.log.Info("journal created", zap.String("journal_id", created.ID.String()), zap.String("code", created.Code))
	return created, nil
}

// GetJournals fetches journals by id.
func (s *GeneralLedgerService) GetJournals(ctx context.Context, ids []JournalID) ([]*Journal, error) {
	rows, err := s.journals.Get(ctx, ids)
	if err != nil {
		return nil, NewResourceError(err)
	}
	return rows, nil
}
