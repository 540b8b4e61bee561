package ledgerbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePeriodGeneratesCalendarMonths(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	period, err := engine.GeneralLedger.CreatePeriod(ctx, 2026, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), CalendarMonth)
	require.NoError(t, err)
	assert.Equal(t, 2026, period.FiscalYear)

	interims, err := engine.GeneralLedger.GetInterimPeriods(ctx, period.ID)
	require.NoError(t, err)
	assert.Len(t, interims, 12)
}

func TestCreatePeriodRejectsDuplicateFiscalYear(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	_, err := engine.GeneralLedger.CreatePeriod(ctx, 2026, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), CalendarMonth)
	require.NoError(t, err)

	_, err = engine.GeneralLedger.CreatePeriod(ctx, 2026, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), CalendarMonth)
	require.Error(t, err)
	assert.EqualError(t, err, "duplicate accounting period")
}

func TestCreatePeriodRejectsUnimplementedInterimTypes(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	_, err := engine.GeneralLedger.CreatePeriod(ctx, 2026, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), FourWeek)
	require.Error(t, err)

	_, err = engine.GeneralLedger.CreatePeriod(ctx, 2027, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), FourFourFiveWeek)
	require.Error(t, err)
}
