package ledgerbook

// Accounting period: a fiscal year with generated interim sub-periods.
// create_period dispatches on InterimType and leaves FourWeek and
// FourFourFiveWeek unimplemented.

import (
	"context"
	"fmt"
	"time"
)

// InterimType selects how a fiscal year is sliced into sub-periods.
type InterimType string

const (
	CalendarMonth     InterimType = "CALENDAR_MONTH"
	FourWeek          InterimType = "FOUR_WEEK"
	FourFourFiveWeek  InterimType = "FOUR_FOUR_FIVE_WEEK"
)

// Period is a fiscal year.
type Period struct {
	ID          PeriodID    `json:"id"`
	FiscalYear  int         `json:"fiscal_year"`
	PeriodStart time.Time   `json:"period_start"`
	PeriodEnd   time.Time   `json:"period_end"`
	PeriodType  InterimType `json:"period_type"`
}

func (m *Period) RecordID() PeriodID { return m.ID }
func (m *Period) MatchesSearch(clauses map[string]string) bool {
	if want, ok := clauses["fiscal_year"]; ok {
		if want != fmt.Sprintf("%d", m.FiscalYear) {
			return false
		}
	}
	return true
}

// InterimPeriod is a sub-period of a fiscal year (e.g. a calendar month).
type InterimPeriod struct {
	ID    InterimPeriodID `json:"id"`
	PeriodID PeriodID     `json:"period_id"`
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
}

func (m *InterimPeriod) RecordID() InterimPeriodID { return m.ID }
func (m *InterimPeriod) MatchesSearch(clauses map[string]string) bool {
	if want, ok := clauses["period_id"]; ok {
		if want != m.PeriodID.String() {
			return false
		}
	}
	return true
}

// CreatePeriod opens a new fiscal year and generates its interim periods.
func (s *GeneralLedgerService) CreatePeriod(ctx context.Context, fiscalYear int, periodStart time.Time, periodType InterimType) (*Period, error) {
	existing, err := s.periods.Search(ctx, fmt.Sprintf("fiscal_year=%d", fiscalYear))
	if err != nil {
		return nil, NewResourceError(err)
	}
	if len(existing) > 0 {
		return nil, NewValidationError("duplicate accounting period")
	}

	periodEnd := periodStart.AddDate(1, 0, -1)
	period := &Period{
		ID:          NewPeriodID(),
		FiscalYear:  fiscalYear,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		PeriodType:  periodType,
	}
	created, err := s.periods.Insert(ctx, period)
	if err != nil {
		return nil, NewResourceError(err)
	}

	interims, err := generateInterimPeriods(created.ID, periodStart, periodType)
	if err != nil {
		return nil, NewUnknownError(fmt.Sprintf("failed to create interim periods for fiscal year %d: %v", fiscalYear, err))
	}
	for _, interim := range interims {
		if _, err := s.interimPeriods.Insert(ctx, interim); err != nil {
			return nil, NewResourceError(err)
		}
	}

	return created, nil
}

// GetPeriods fetches fiscal-year periods by id.
func (s *GeneralLedgerService) GetPeriods(ctx context.Context, ids []PeriodID) ([]*Period, error) {
	rows, err := s.periods.Get(ctx, ids)
	if err != nil {
		return nil, NewResourceError(err)
	}
	return rows, nil
}

// GetInterimPeriods fetches the interim periods belonging to a fiscal year.
func (s *GeneralLedgerService) GetInterimPeriods(ctx context.Context, periodID PeriodID) ([]*InterimPeriod, error) {
	rows, err := s.interimPeriods.Search(ctx, fmt.Sprintf("period_id=%s", periodID))
	if err != nil {
		return nil, NewResourceError(err)
	}
	return rows, nil
}

// generateInterimPeriods builds the sub-periods for a fiscal year.
// FourWeek and FourFourFiveWeek are declared but not implemented;
// callers receive an explicit error rather than a silent no-op or a panic.
func generateInterimPeriods(periodID PeriodID, periodStart time.Time, periodType InterimType) ([]*InterimPeriod, error) {
	switch periodType {
	case CalendarMonth:
		months := make([]*InterimPeriod, 0, 12)
		monthStart := time.Date(periodStart.Year(), periodStart.Month(), 1, 0, 0, 0, 0, periodStart.Location())
		for i := 0; i < 12; i++ {
			start := monthStart.AddDate(0, i, 0)
			end := start.AddDate(0, 1, -1)
			months = append(months, &InterimPeriod{
				ID:       NewInterimPeriodID(),
				PeriodID: periodID,
				Start:    start,
				End:      end,
			})
		}
		return months, nil
	case FourWeek, FourFourFiveWeek:
		return nil, NewUnknownError(fmt.Sprintf("interim period type not implemented: %s", periodType))
	default:
		return nil, NewValidationError(fmt.Sprintf("unknown interim period type: %s", periodType))
	}
}
