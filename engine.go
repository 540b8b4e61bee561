package ledgerbook

// AccountEngine (facade): wires every repository and service together
// behind one constructor, generalized across the two backends this repo
// supports (in-memory, bbolt).

import (
	"fmt"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Backend selects which Repository implementation backs the engine.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBolt   Backend = "bbolt"
)

// Config controls how an AccountEngine is constructed.
type Config struct {
	Backend Backend
	// BoltPath is the database file path, required when Backend == BackendBolt.
	BoltPath string
	Logger   *zap.Logger
	Clock    Clock
}

// AccountEngine is the application's single entry point: one value per
// book, holding every service and its backing store.
type AccountEngine struct {
	db  *bbolt.DB
	log *zap.Logger

	GeneralLedger  *GeneralLedgerService
	Subsidiary     *SubsidiaryLedgerService
	GeneralJournal *GeneralJournalService
	SpecialJournal *SpecialJournalService
	Posting        *PostingEngine
	Ledger         *LedgerService
	Audit          *Auditor
}

// NewAccountEngine builds the full service graph over the chosen backend.
func NewAccountEngine(cfg Config) (*AccountEngine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = NewMonotonicClock()
	}

	switch cfg.Backend {
	case BackendBolt:
		return newBoltEngine(cfg, clock, log)
	case BackendMemory, "":
		return newMemoryEngine(clock, log), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

func newMemoryEngine(clock Clock, log *zap.Logger) *AccountEngine {
	generalLedgers := newMemTable[GeneralLedgerID, *GeneralLedger]("general_ledger", false)
	ledgers := newMemTable[LedgerID, *Ledger]("ledger", false)
	intermediates := newMemTable[LedgerID, *LedgerIntermediate]("ledger_intermediate", false)
	leaves := newMemTable[LedgerID, *LedgerLeaf]("ledger_leaf", false)
	deriveds := newMemTable[LedgerID, *LedgerDerived]("ledger_derived", false)
	journals := newMemTable[JournalID, *Journal]("journal", false)
	periods := newMemTable[PeriodID, *Period]("accounting_period", false)
	interimPeriods := newMemTable[InterimPeriodID, *InterimPeriod]("interim_accounting_period", false)

	subsidiaries := newMemTable[SubsidiaryLedgerID, *SubsidiaryLedger]("subsidiary_ledger", false)
	externalAccounts := newMemTable[ExternalAccountID, *ExternalAccount]("external_account", false)

	generalHeaders := newMemTable[JournalTransactionKey, *GeneralTransactionHeader]("journal_transaction_general", false)
	generalLines := newMemTable[GeneralLineID, *GeneralTransactionLine]("journal_transaction_general_line", false)

	templates := newMemTable[TemplateID, *Template]("journal_transaction_special_template", false)
	templateColumns := newMemTable[TemplateColumnID, *TemplateColumn]("journal_transaction_special_template_column", false)
	specialHeaders := newMemTable[JournalTransactionKey, *SpecialTransactionHeader]("journal_transaction_special", false)
	specialColumns := newMemTable[ColumnRowID, *SpecialTransactionColumn]("journal_transaction_special_column", false)
	specialTotals := newMemTable[JournalTransactionKey, *SpecialTransactionSummary]("journal_transaction_special_totals", false)
	columnTotals := newMemTable[ColumnTotalID, *ColumnTotal]("journal_transaction_special_column_total", false)

	accountTxns := newMemTable[ExternalAccountTransactionKey, *ExternalAccountTransaction]("external_account_transaction", true)
	entries := newMemTable[LedgerEntryKey, *LedgerEntry]("ledger_transaction", true)
	ledgerPairs := newMemTable[LedgerEntryKey, *LedgerLedgerPair]("ledger_transaction_ledger", true)
	accountPairs := newMemTable[LedgerEntryKey, *LedgerAccountPair]("ledger_transaction_account", true)

	engine, _ := assemble(
		nil, log, clock,
		generalLedgers, ledgers, intermediates, leaves, deriveds, journals, periods, interimPeriods,
		subsidiaries, externalAccounts,
		generalHeaders, generalLines,
		templates, templateColumns, specialHeaders, specialColumns, specialTotals, columnTotals,
		accountTxns, entries, ledgerPairs, accountPairs,
	)
	return engine
}

func newBoltEngine(cfg Config, clock Clock, log *zap.Logger) (*AccountEngine, error) {
	if cfg.BoltPath == "" {
		return nil, fmt.Errorf("bbolt backend requires Config.BoltPath")
	}
	db, err := bbolt.Open(cfg.BoltPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	generalLedgers, err := newBoltTable(db, "general_ledger", encodeUUIDKey[GeneralLedgerID], func() *GeneralLedger { return &GeneralLedger{} }, false)
	if err != nil {
		return nil, err
	}
	ledgers, err := newBoltTable(db, "ledger", encodeUUIDKey[LedgerID], func() *Ledger { return &Ledger{} }, false)
	if err != nil {
		return nil, err
	}
	intermediates, err := newBoltTable(db, "ledger_intermediate", encodeUUIDKey[LedgerID], func() *LedgerIntermediate { return &LedgerIntermediate{} }, false)
	if err != nil {
		return nil, err
	}
	leaves, err := newBoltTable(db, "ledger_leaf", encodeUUIDKey[LedgerID], func() *LedgerLeaf { return &LedgerLeaf{} }, false)
	if err != nil {
		return nil, err
	}
	deriveds, err := newBoltTable(db, "ledger_derived", encodeUUIDKey[LedgerID], func() *LedgerDerived { return &LedgerDerived{} }, false)
	if err != nil {
		return nil, err
	}
	journals, err := newBoltTable(db, "journal", encodeUUIDKey[JournalID], func() *Journal { return &Journal{} }, false)
	if err != nil {
		return nil, err
	}
	periods, err := newBoltTable(db, "accounting_period", encodeUUIDKey[PeriodID], func() *Period { return &Period{} }, false)
	if err != nil {
		return nil, err
	}
	interimPeriods, err := newBoltTable(db, "interim_accounting_period", encodeUUIDKey[InterimPeriodID], func() *InterimPeriod { return &InterimPeriod{} }, false)
	if err != nil {
		return nil, err
	}

	subsidiaries, err := newBoltTable(db, "subsidiary_ledger", encodeUUIDKey[SubsidiaryLedgerID], func() *SubsidiaryLedger { return &SubsidiaryLedger{} }, false)
	if err != nil {
		return nil, err
	}
	externalAccounts, err := newBoltTable(db, "external_account", encodeUUIDKey[ExternalAccountID], func() *ExternalAccount { return &ExternalAccount{} }, false)
	if err != nil {
		return nil, err
	}

	generalHeaders, err := newBoltTable(db, "journal_transaction_general", encodeJournalTransactionKey, func() *GeneralTransactionHeader { return &GeneralTransactionHeader{} }, false)
	if err != nil {
		return nil, err
	}
	generalLines, err := newBoltTable(db, "journal_transaction_general_line", encodeUUIDKey[GeneralLineID], func() *GeneralTransactionLine { return &GeneralTransactionLine{} }, false)
	if err != nil {
		return nil, err
	}

	templates, err := newBoltTable(db, "journal_transaction_special_template", encodeUUIDKey[TemplateID], func() *Template { return &Template{} }, false)
	if err != nil {
		return nil, err
	}
	templateColumns, err := newBoltTable(db, "journal_transaction_special_template_column", encodeUUIDKey[TemplateColumnID], func() *TemplateColumn { return &TemplateColumn{} }, false)
	if err != nil {
		return nil, err
	}
	specialHeaders, err := newBoltTable(db, "journal_transaction_special", encodeJournalTransactionKey, func() *SpecialTransactionHeader { return &SpecialTransactionHeader{} }, false)
	if err != nil {
		return nil, err
	}
	specialColumns, err := newBoltTable(db, "journal_transaction_special_column", encodeUUIDKey[ColumnRowID], func() *SpecialTransactionColumn { return &SpecialTransactionColumn{} }, false)
	if err != nil {
		return nil, err
	}
	specialTotals, err := newBoltTable(db, "journal_transaction_special_totals", encodeJournalTransactionKey, func() *SpecialTransactionSummary { return &SpecialTransactionSummary{} }, false)
	if err != nil {
		return nil, err
	}
	columnTotals, err := newBoltTable(db, "journal_transaction_special_column_total", encodeUUIDKey[ColumnTotalID], func() *ColumnTotal { return &ColumnTotal{} }, false)
	if err != nil {
		return nil, err
	}

	accountTxns, err := newBoltTable(db, "external_account_transaction", encodeExternalAccountTransactionKey, func() *ExternalAccountTransaction { return &ExternalAccountTransaction{} }, true)
	if err != nil {
		return nil, err
	}
	entries, err := newBoltTable(db, "ledger_transaction", encodeLedgerEntryKey, func() *LedgerEntry { return &LedgerEntry{} }, true)
	if err != nil {
		return nil, err
	}
	ledgerPairs, err := newBoltTable(db, "ledger_transaction_ledger", encodeLedgerEntryKey, func() *LedgerLedgerPair { return &LedgerLedgerPair{} }, true)
	if err != nil {
		return nil, err
	}
	accountPairs, err := newBoltTable(db, "ledger_transaction_account", encodeLedgerEntryKey, func() *LedgerAccountPair { return &LedgerAccountPair{} }, true)
	if err != nil {
		return nil, err
	}

	return assemble(
		db, log, clock,
		generalLedgers, ledgers, intermediates, leaves, deriveds, journals, periods, interimPeriods,
		subsidiaries, externalAccounts,
		generalHeaders, generalLines,
		templates, templateColumns, specialHeaders, specialColumns, specialTotals, columnTotals,
		accountTxns, entries, ledgerPairs, accountPairs,
	)
}

func assemble(
	db *bbolt.DB, log *zap.Logger, clock Clock,
	generalLedgers Repository[GeneralLedgerID, *GeneralLedger],
	ledgers Repository[LedgerID, *Ledger],
	intermediates Repository[LedgerID, *LedgerIntermediate],
	leaves Repository[LedgerID, *LedgerLeaf],
	deriveds Repository[LedgerID, *LedgerDerived],
	journals Repository[JournalID, *Journal],
	periods Repository[PeriodID, *Period],
	interimPeriods Repository[InterimPeriodID, *InterimPeriod],
	subsidiaries Repository[SubsidiaryLedgerID, *SubsidiaryLedger],
	externalAccounts Repository[ExternalAccountID, *ExternalAccount],
	generalHeaders Repository[JournalTransactionKey, *GeneralTransactionHeader],
	generalLines Repository[GeneralLineID, *GeneralTransactionLine],
	templates Repository[TemplateID, *Template],
	templateColumns Repository[TemplateColumnID, *TemplateColumn],
	specialHeaders Repository[JournalTransactionKey, *SpecialTransactionHeader],
	specialColumns Repository[ColumnRowID, *SpecialTransactionColumn],
	specialTotals Repository[JournalTransactionKey, *SpecialTransactionSummary],
	columnTotals Repository[ColumnTotalID, *ColumnTotal],
	accountTxns Repository[ExternalAccountTransactionKey, *ExternalAccountTransaction],
	entries Repository[LedgerEntryKey, *LedgerEntry],
	ledgerPairs Repository[LedgerEntryKey, *LedgerLedgerPair],
	accountPairs Repository[LedgerEntryKey, *LedgerAccountPair],
) (*AccountEngine, error) {
	glSvc := NewGeneralLedgerService(generalLedgers, ledgers, intermediates, leaves, deriveds, journals, periods, interimPeriods, clock, log)
	subSvc := NewSubsidiaryLedgerService(ledgers, subsidiaries, externalAccounts, log)
	generalSvc := NewGeneralJournalService(ledgers, generalHeaders, generalLines)
	specialSvc := NewSpecialJournalService(journals, templates, templateColumns, specialHeaders, specialColumns)
	entryStore := NewLedgerEntryStore(entries, ledgerPairs, accountPairs)
	ledgerSvc := NewLedgerService(entryStore, log)
	posting := NewPostingEngine(journals, templateColumns, generalLines, specialColumns, columnTotals, specialTotals, accountTxns, entries, ledgerPairs, generalSvc, clock, log)
	audit := NewAuditor(generalLines, specialColumns, entries, accountTxns)

	return &AccountEngine{
		db:             db,
		log:            log,
		GeneralLedger:  glSvc,
		Subsidiary:     subSvc,
		GeneralJournal: generalSvc,
		SpecialJournal: specialSvc,
		Posting:        posting,
		Ledger:         ledgerSvc,
		Audit:          audit,
	}, nil
}

// Close releases the engine's backing store, if any.
func (e *AccountEngine) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}
