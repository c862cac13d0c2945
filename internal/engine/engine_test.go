package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/internal/schedule"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	m := schedule.NewModel(schedule.DefaultCalendars())
	require.NoError(t, m.Validate())
	return New(m, 1.0)
}

func ptr(v float64) *float64 { return &v }

// Friday falls in the Avondale Thursday cycle, which covers 4.0 days.
var fridayMorning = time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)

func TestClassifyRedBelowRequired(t *testing.T) {
	e := testEngine(t)
	item := model.Item{Name: "Steak", Location: model.LocationAvondale, ADU: 2.0, Unit: model.UnitCase, ParLevel: 10}

	st, err := e.Classify(item, ptr(8), fridayMorning)
	require.NoError(t, err)

	// adu 2.0 x (4.0 coverage + 1.0 buffer) = 10.0 required
	assert.Equal(t, 10.0, st.Required)
	assert.Equal(t, model.StatusRed, st.Status)
	require.NotNil(t, st.DaysOfStock)
	assert.Equal(t, 4.0, *st.DaysOfStock)
}

func TestClassifyGreenAtOrAbovePar(t *testing.T) {
	e := testEngine(t)
	item := model.Item{Name: "Steak", Location: model.LocationAvondale, ADU: 2.0, Unit: model.UnitCase, ParLevel: 10}

	st, err := e.Classify(item, ptr(12), fridayMorning)
	require.NoError(t, err)
	assert.Equal(t, model.StatusGreen, st.Status)
}

func TestClassifyYellowBetweenRequiredAndPar(t *testing.T) {
	e := testEngine(t)
	item := model.Item{Name: "Steak", Location: model.LocationAvondale, ADU: 2.0, Unit: model.UnitCase, ParLevel: 12}

	st, err := e.Classify(item, ptr(11), fridayMorning)
	require.NoError(t, err)
	assert.Equal(t, model.StatusYellow, st.Status)
}

func TestClassifyMissingWhenNoCount(t *testing.T) {
	e := testEngine(t)
	item := model.Item{Name: "Steak", Location: model.LocationAvondale, ADU: 2.0, Unit: model.UnitCase, ParLevel: 10}

	st, err := e.Classify(item, nil, fridayMorning)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMissing, st.Status)
	assert.Equal(t, 10.0, st.Required)
	require.NotNil(t, st.DaysOfStock)
	assert.Zero(t, *st.DaysOfStock)
}

func TestClassifyZeroADU(t *testing.T) {
	e := testEngine(t)
	item := model.Item{Name: "Garnish", Location: model.LocationAvondale, ADU: 0, Unit: model.UnitCase, ParLevel: 1}

	st, err := e.Classify(item, ptr(2), fridayMorning)
	require.NoError(t, err)
	require.NotNil(t, st.DaysOfStock)
	assert.Zero(t, *st.DaysOfStock)
	assert.Equal(t, model.StatusGreen, st.Status)
}

func TestGenerateRequestsRoundsUp(t *testing.T) {
	e := testEngine(t)
	items := []model.Item{
		{Name: "Honey", Location: model.LocationAvondale, ADU: 1.0, Unit: model.UnitBottle, ParLevel: 6},
	}

	// Tuesday window covers 6.5 + 1.0 buffer = 7.5 days.
	// shortfall 7.5 - 5.2 = 2.3 rounds up to 3.
	lines, window, err := e.GenerateRequests(model.LocationAvondale, time.Tuesday, items, map[string]float64{"Honey": 5.2})
	require.NoError(t, err)
	assert.Equal(t, "Thursday Delivery", window.Label)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Requested)
	assert.False(t, lines[0].FullyStocked)
}

func TestGenerateRequestsRetainsFullyStocked(t *testing.T) {
	e := testEngine(t)
	items := []model.Item{
		{Name: "Honey", Location: model.LocationAvondale, ADU: 1.0, Unit: model.UnitBottle, ParLevel: 6},
		{Name: "Steak", Location: model.LocationAvondale, ADU: 1.0, Unit: model.UnitCase, ParLevel: 6},
	}
	onHand := map[string]float64{"Honey": 20, "Steak": 1}

	lines, _, err := e.GenerateRequests(model.LocationAvondale, time.Tuesday, items, onHand)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Honey", lines[0].Item.Name)
	assert.True(t, lines[0].FullyStocked)
	assert.Zero(t, lines[0].Requested)

	assert.Equal(t, "Steak", lines[1].Item.Name)
	assert.False(t, lines[1].FullyStocked)

	needed := Needed(lines)
	require.Len(t, needed, 1)
	assert.Equal(t, "Steak", needed[0].Item.Name)
}

func TestGenerateRequestsMissingItemTreatedAsZeroOnHand(t *testing.T) {
	e := testEngine(t)
	items := []model.Item{
		{Name: "Honey", Location: model.LocationAvondale, ADU: 2.0, Unit: model.UnitBottle, ParLevel: 6},
	}

	lines, _, err := e.GenerateRequests(model.LocationAvondale, time.Tuesday, items, nil)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	// 2.0 x 7.5 = 15 needed from zero on hand.
	assert.Equal(t, 15, lines[0].Requested)
}

func TestGenerateRequestsSortedByName(t *testing.T) {
	e := testEngine(t)
	items := []model.Item{
		{Name: "Steak", Location: model.LocationAvondale, ADU: 1.0, Unit: model.UnitCase, ParLevel: 6},
		{Name: "Honey", Location: model.LocationAvondale, ADU: 1.0, Unit: model.UnitBottle, ParLevel: 6},
		{Name: "Salmon", Location: model.LocationAvondale, ADU: 1.0, Unit: model.UnitCase, ParLevel: 3},
	}

	lines, _, err := e.GenerateRequests(model.LocationAvondale, time.Tuesday, items, nil)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "Honey", lines[0].Item.Name)
	assert.Equal(t, "Salmon", lines[1].Item.Name)
	assert.Equal(t, "Steak", lines[2].Item.Name)
}

func TestGenerateRequestsNoWindowConfigured(t *testing.T) {
	e := testEngine(t)
	_, _, err := e.GenerateRequests(model.LocationAvondale, time.Wednesday, nil, nil)
	assert.Error(t, err)
}

func TestGenerateRequestsSkipsOtherLocation(t *testing.T) {
	e := testEngine(t)
	items := []model.Item{
		{Name: "Fish", Location: model.LocationCommissary, ADU: 0.3, Unit: model.UnitTray, ParLevel: 1},
		{Name: "Steak", Location: model.LocationAvondale, ADU: 1.8, Unit: model.UnitCase, ParLevel: 6},
	}

	lines, _, err := e.GenerateRequests(model.LocationAvondale, time.Tuesday, items, nil)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Steak", lines[0].Item.Name)
}
