package ledgerbook

// Journal + template. A journal is either General (line-based) or
// Special (column-based against a template).

// JournalType distinguishes line-based from column-based journals.
type JournalType string

const (
	GeneralJournalType JournalType = "GENERAL"
	SpecialJournal      JournalType = "SPECIAL"
)

// Journal is the header row shared by general and special journals.
type Journal struct {
	ID              JournalID   `json:"id"`
	Name            string      `json:"name"`
	Code            string      `json:"code"`
	JournalType     JournalType `json:"journal_type"`
	ControlLedgerID *LedgerID   `json:"control_ledger_id,omitempty"`
	TemplateID      *TemplateID `json:"template_id,omitempty"`
}

func (m *Journal) RecordID() JournalID { return m.ID }
func (m *Journal) MatchesSearch(clauses map[string]string) bool {
	return matchString(clauses, "code", m.Code)
}

// ColumnType is the tagged-variant kind of one template column.
type ColumnType string

const (
	LedgerDrCrColumn ColumnType = "LEDGER_DR_CR"
	TextColumn       ColumnType = "TEXT"
	AccountDrColumn  ColumnType = "ACCOUNT_DR"
	AccountCrColumn  ColumnType = "ACCOUNT_CR"
)

// Template is a special journal's column specification.
type Template struct {
	ID   TemplateID `json:"id"`
	Name string     `json:"name"`
}

func (m *Template) RecordID() TemplateID                       { return m.ID }
func (m *Template) MatchesSearch(clauses map[string]string) bool { return true }

// TemplateColumn fixes the meaning of column N for every transaction
// using this template.
type TemplateColumn struct {
	ID         TemplateColumnID `json:"id"`
	TemplateID TemplateID       `json:"template_id"`
	Sequence   Sequence         `json:"sequence"`
	Name       string           `json:"name"`
	ColumnType ColumnType       `json:"column_type"`
	DrLedgerID *LedgerID        `json:"dr_ledger_id,omitempty"`
	CrLedgerID *LedgerID        `json:"cr_ledger_id,omitempty"`
	DrAccountID *ExternalAccountID `json:"dr_account_id,omitempty"`
	CrAccountID *ExternalAccountID `json:"cr_account_id,omitempty"`
}

func (m *TemplateColumn) RecordID() TemplateColumnID { return m.ID }
func (m *TemplateColumn) MatchesSearch(clauses map[string]string) bool {
	if want, ok := clauses["template_id"]; ok && want != m.TemplateID.String() {
		return false
	}
	if want, ok := clauses["template_column_id"]; ok && want != m.ID.String() {
		return false
	}
	return true
}
