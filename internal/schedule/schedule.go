// Package schedule computes delivery timing and coverage windows per
// location.
package schedule

import (
	"fmt"
	"time"

	"github.com/ladiossato/k2-inventory/internal/model"
)

// FallbackCoverageDays is used when a resolved delivery weekday has no
// explicit coverage entry. Calendars are validated at startup so this
// only matters for hand-edited configs.
const FallbackCoverageDays = 3.5

// Window is a purchase-request ordering window: requests placed on the
// keyed weekday must cover TotalDays of consumption until the labeled
// delivery arrives.
type Window struct {
	Label     string
	TotalDays float64
}

// Calendar is the delivery schedule for one location.
type Calendar struct {
	DeliveryDays map[time.Weekday]bool
	DeliveryHour int
	Coverage     map[time.Weekday]float64
	Windows      map[time.Weekday]Window
}

// Model resolves delivery timing questions against per-location
// calendars. Immutable after construction.
type Model struct {
	calendars map[model.Location]Calendar
}

// NewModel builds a schedule model. Call Validate before use.
func NewModel(calendars map[model.Location]Calendar) *Model {
	return &Model{calendars: calendars}
}

// DefaultCalendars returns the production delivery schedules.
func DefaultCalendars() map[model.Location]Calendar {
	return map[model.Location]Calendar{
		model.LocationAvondale: {
			DeliveryDays: map[time.Weekday]bool{time.Monday: true, time.Thursday: true},
			DeliveryHour: 12,
			Coverage: map[time.Weekday]float64{
				time.Monday:   3.0,
				time.Thursday: 4.0,
			},
			Windows: map[time.Weekday]Window{
				time.Tuesday:  {Label: "Thursday Delivery", TotalDays: 6.5},
				time.Saturday: {Label: "Monday Delivery", TotalDays: 5.5},
			},
		},
		model.LocationCommissary: {
			DeliveryDays: map[time.Weekday]bool{time.Tuesday: true, time.Thursday: true, time.Saturday: true},
			DeliveryHour: 12,
			Coverage: map[time.Weekday]float64{
				time.Tuesday:  2.0,
				time.Thursday: 2.0,
				time.Saturday: 3.0,
			},
			Windows: map[time.Weekday]Window{
				time.Sunday:   {Label: "Tuesday Delivery", TotalDays: 2.5},
				time.Tuesday:  {Label: "Thursday Delivery", TotalDays: 2.5},
				time.Thursday: {Label: "Saturday Delivery", TotalDays: 2.5},
			},
		},
	}
}

// Validate checks every calendar for configuration errors. An empty
// delivery-day set or a delivery weekday without a coverage entry is
// fatal at startup.
func (m *Model) Validate() error {
	for loc, cal := range m.calendars {
		days := 0
		for _, on := range cal.DeliveryDays {
			if on {
				days++
			}
		}
		if days == 0 {
			return fmt.Errorf("location %s: empty delivery-day set", loc)
		}
		if cal.DeliveryHour < 0 || cal.DeliveryHour > 23 {
			return fmt.Errorf("location %s: delivery hour %d out of range", loc, cal.DeliveryHour)
		}
		for wd, on := range cal.DeliveryDays {
			if !on {
				continue
			}
			if _, ok := cal.Coverage[wd]; !ok {
				return fmt.Errorf("location %s: delivery weekday %s has no coverage entry", loc, wd)
			}
		}
	}
	return nil
}

func (m *Model) calendar(loc model.Location) (Calendar, error) {
	cal, ok := m.calendars[loc]
	if !ok {
		return Calendar{}, fmt.Errorf("no delivery calendar for location %s", loc)
	}
	return cal, nil
}

// NextDelivery returns the fractional days until the next delivery at
// the location and the delivery instant itself. A delivery today counts
// only while the delivery hour has not yet passed.
func (m *Model) NextDelivery(loc model.Location, now time.Time) (float64, time.Time, error) {
	cal, err := m.calendar(loc)
	if err != nil {
		return 0, time.Time{}, err
	}

	for offset := 0; offset <= 7; offset++ {
		cand := now.AddDate(0, 0, offset)
		if !cal.DeliveryDays[cand.Weekday()] {
			continue
		}
		at := time.Date(cand.Year(), cand.Month(), cand.Day(), cal.DeliveryHour, 0, 0, 0, now.Location())
		if at.Before(now) {
			continue
		}
		return at.Sub(now).Hours() / 24, at, nil
	}
	return 0, time.Time{}, fmt.Errorf("location %s: no delivery day within a week", loc)
}

// CoverageDays resolves the delivery cycle containing anchor and
// returns how many days that delivery must cover. A delivery becomes
// the active cycle at its delivery hour; before the week's first
// delivery the prior week's last applies.
func (m *Model) CoverageDays(loc model.Location, anchor time.Time) (float64, error) {
	cal, err := m.calendar(loc)
	if err != nil {
		return 0, err
	}

	for offset := 0; offset <= 7; offset++ {
		cand := anchor.AddDate(0, 0, -offset)
		if !cal.DeliveryDays[cand.Weekday()] {
			continue
		}
		at := time.Date(cand.Year(), cand.Month(), cand.Day(), cal.DeliveryHour, 0, 0, 0, anchor.Location())
		if at.After(anchor) {
			continue
		}
		if cov, ok := cal.Coverage[cand.Weekday()]; ok {
			return cov, nil
		}
		return FallbackCoverageDays, nil
	}
	return 0, fmt.Errorf("location %s: no delivery day within a week", loc)
}

// WindowFor returns the ordering window for requests placed on the
// given weekday, if one is configured.
func (m *Model) WindowFor(loc model.Location, weekday time.Weekday) (Window, bool) {
	cal, ok := m.calendars[loc]
	if !ok {
		return Window{}, false
	}
	w, ok := cal.Windows[weekday]
	return w, ok
}
