package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladiossato/k2-inventory/internal/model"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel(DefaultCalendars())
	require.NoError(t, m.Validate())
	return m
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return ts
}

func TestNextDeliveryBeforeDeliveryHour(t *testing.T) {
	m := testModel(t)

	// Monday 09:00, Avondale delivers Monday at noon.
	days, date, err := m.NextDelivery(model.LocationAvondale, at(t, "2026-08-24 09:00"))
	require.NoError(t, err)
	assert.InDelta(t, 0.125, days, 1e-9)
	assert.Equal(t, at(t, "2026-08-24 12:00"), date)
}

func TestNextDeliveryAfterDeliveryHourRollsForward(t *testing.T) {
	m := testModel(t)

	// Monday 13:00 has missed today's delivery; next is Thursday noon.
	days, date, err := m.NextDelivery(model.LocationAvondale, at(t, "2026-08-24 13:00"))
	require.NoError(t, err)
	assert.InDelta(t, 2.0+23.0/24.0, days, 1e-9)
	assert.Equal(t, at(t, "2026-08-27 12:00"), date)
}

func TestNextDeliveryAtExactDeliveryHour(t *testing.T) {
	m := testModel(t)

	days, date, err := m.NextDelivery(model.LocationAvondale, at(t, "2026-08-24 12:00"))
	require.NoError(t, err)
	assert.Zero(t, days)
	assert.Equal(t, at(t, "2026-08-24 12:00"), date)
}

func TestNextDeliveryUnknownLocation(t *testing.T) {
	m := testModel(t)

	_, _, err := m.NextDelivery(model.Location("warehouse"), at(t, "2026-08-24 09:00"))
	assert.Error(t, err)
}

func TestCoverageDaysResolvesActiveCycle(t *testing.T) {
	m := testModel(t)

	cases := []struct {
		name   string
		loc    model.Location
		anchor string
		want   float64
	}{
		{"avondale monday afternoon is monday cycle", model.LocationAvondale, "2026-08-24 13:00", 3.0},
		{"avondale monday morning is prior thursday cycle", model.LocationAvondale, "2026-08-24 09:00", 4.0},
		{"avondale friday is thursday cycle", model.LocationAvondale, "2026-08-28 10:00", 4.0},
		{"commissary wednesday is tuesday cycle", model.LocationCommissary, "2026-08-26 10:00", 2.0},
		{"commissary sunday is saturday cycle", model.LocationCommissary, "2026-08-23 10:00", 3.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.CoverageDays(tc.loc, at(t, tc.anchor))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCoverageDaysFallbackForUnmappedWeekday(t *testing.T) {
	m := NewModel(map[model.Location]Calendar{
		model.LocationAvondale: {
			DeliveryDays: map[time.Weekday]bool{time.Monday: true, time.Thursday: true},
			DeliveryHour: 12,
			Coverage:     map[time.Weekday]float64{time.Monday: 3.0},
		},
	})

	// Friday resolves to the Thursday cycle, which has no entry.
	got, err := m.CoverageDays(model.LocationAvondale, at(t, "2026-08-28 10:00"))
	require.NoError(t, err)
	assert.Equal(t, FallbackCoverageDays, got)
}

func TestValidateRejectsEmptyDeliverySet(t *testing.T) {
	m := NewModel(map[model.Location]Calendar{
		model.LocationAvondale: {DeliveryHour: 12},
	})
	assert.Error(t, m.Validate())
}

func TestValidateRejectsMissingCoverageEntry(t *testing.T) {
	m := NewModel(map[model.Location]Calendar{
		model.LocationAvondale: {
			DeliveryDays: map[time.Weekday]bool{time.Monday: true, time.Thursday: true},
			DeliveryHour: 12,
			Coverage:     map[time.Weekday]float64{time.Monday: 3.0},
		},
	})
	assert.Error(t, m.Validate())
}

func TestWindowFor(t *testing.T) {
	m := testModel(t)

	w, ok := m.WindowFor(model.LocationAvondale, time.Tuesday)
	require.True(t, ok)
	assert.Equal(t, "Thursday Delivery", w.Label)
	assert.Equal(t, 6.5, w.TotalDays)

	_, ok = m.WindowFor(model.LocationAvondale, time.Wednesday)
	assert.False(t, ok)
}
