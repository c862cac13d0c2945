package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/internal/schedule"
)

func TestFormatUnit(t *testing.T) {
	assert.Equal(t, "1 case", FormatUnit(1, model.UnitCase))
	assert.Equal(t, "2 cases", FormatUnit(2, model.UnitCase))
	assert.Equal(t, "0 bottles", FormatUnit(0, model.UnitBottle))
	assert.Equal(t, "2.5 quarts", FormatUnit(2.5, model.UnitQuart))
}

func steak() model.Item {
	return model.Item{Name: "Steak", Location: model.LocationAvondale, ADU: 2.0, Unit: model.UnitCase, ParLevel: 10}
}

func ptr(v float64) *float64 { return &v }

func TestStatusDigestGroups(t *testing.T) {
	days := 4.0
	statuses := []model.ItemStatus{
		{Item: steak(), OnHand: ptr(8), Required: 10, DaysOfStock: &days, Status: model.StatusRed},
		{Item: model.Item{Name: "Honey", Unit: model.UnitBottle, ADU: 2, ParLevel: 6}, Status: model.StatusMissing, Required: 10},
	}

	out := StatusDigest(model.LocationAvondale, statuses, time.Date(2026, time.August, 27, 12, 0, 0, 0, time.UTC))
	assert.Contains(t, out, "AVONDALE STATUS")
	assert.Contains(t, out, "Next Delivery: Thu Aug 27")
	assert.Contains(t, out, "WON'T LAST TO DELIVERY")
	assert.Contains(t, out, "Steak: 8 cases (need 2 more)")
	assert.Contains(t, out, "Honey: no count recorded")
}

func TestOrderAnalysisSkipsStocked(t *testing.T) {
	lines := []model.RequestLine{
		{Item: steak(), OnHand: 2, Needed: 13.5, Requested: 12},
		{Item: model.Item{Name: "Honey", Unit: model.UnitBottle, ADU: 2}, OnHand: 20, Needed: 15, FullyStocked: true},
	}
	window := schedule.Window{Label: "Thursday Delivery", TotalDays: 6.5}

	out := OrderAnalysis(model.LocationAvondale, window, 1.0, lines)
	assert.Contains(t, out, "Coverage: 7.5 days")
	assert.Contains(t, out, "Steak")
	assert.Contains(t, out, "Need: <b>12 cases</b>")
	assert.NotContains(t, out, "Honey")
}

func TestOrderMessage(t *testing.T) {
	lines := []model.RequestLine{
		{Item: steak(), OnHand: 2, Needed: 13.5, Requested: 12},
	}
	out := OrderMessage(model.LocationAvondale, schedule.Window{Label: "Thursday Delivery", TotalDays: 6.5}, lines)
	assert.Contains(t, out, "Thursday Delivery")
	assert.Contains(t, out, "<b>Steak</b>: 12 cases")
}

func TestOrderMessageNothingNeeded(t *testing.T) {
	lines := []model.RequestLine{
		{Item: steak(), OnHand: 20, Needed: 13.5, FullyStocked: true},
	}
	out := OrderMessage(model.LocationAvondale, schedule.Window{Label: "Thursday Delivery"}, lines)
	assert.Contains(t, out, "Nothing needed")
}

func TestMissingReport(t *testing.T) {
	out := MissingReport(model.LocationAvondale, time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC), []string{"Honey", "Steak"})
	assert.Contains(t, out, "MISSING COUNTS")
	assert.Contains(t, out, "• Honey")
	assert.Contains(t, out, "• Steak")

	out = MissingReport(model.LocationAvondale, time.Now(), nil)
	assert.Contains(t, out, "All items counted")
}

func TestSubmissionSummarySortsAndPluralizes(t *testing.T) {
	snap := model.Snapshot{
		Location:   model.LocationAvondale,
		EntryType:  model.EntryOnHand,
		Date:       time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC),
		Quantities: map[string]float64{"Steak": 1, "Honey": 2.5},
		Note:       "walk-in was <warm>",
	}
	items := []model.Item{steak(), {Name: "Honey", Unit: model.UnitBottle}}

	out := SubmissionSummary(snap, items, nil)
	assert.Contains(t, out, "2 items recorded")
	assert.Contains(t, out, "• Steak: 1 case")
	assert.Contains(t, out, "• Honey: 2.5 bottles")
	// escaping happens at send time, the note stays raw here
	assert.Contains(t, out, "walk-in was <warm>")
	// Honey sorts before Steak
	assert.Less(t, strings.Index(out, "Honey: 2.5"), strings.Index(out, "Steak: 1"))
}

func TestSubmissionSummaryFlagsShortages(t *testing.T) {
	snap := model.Snapshot{
		Location:   model.LocationAvondale,
		EntryType:  model.EntryReceived,
		Date:       time.Date(2026, time.August, 27, 0, 0, 0, 0, time.UTC),
		Quantities: map[string]float64{"Steak": 10, "Honey": 3},
	}
	items := []model.Item{steak(), {Name: "Honey", Unit: model.UnitBottle}}

	out := SubmissionSummary(snap, items, map[string]int{"Steak": 12, "Honey": 3})
	assert.Contains(t, out, "DELIVERY RECEIVED")
	assert.Contains(t, out, "SHORT OF REQUEST")
	assert.Contains(t, out, "Steak: requested 12 cases, received 10 cases")
	assert.NotContains(t, out, "Honey: requested")
}

func TestADUTable(t *testing.T) {
	out := ADUTable(map[model.Location][]model.Item{
		model.LocationAvondale: {steak(), {Name: "Honey", ADU: 2.0, Unit: model.UnitBottle}},
	})
	assert.Contains(t, out, "AVONDALE")
	assert.Contains(t, out, "<b>Honey</b>: 2/day")
	assert.Contains(t, out, "<b>Steak</b>: 2/day")
}
