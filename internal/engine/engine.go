// Package engine implements consumption math: status classification
// and purchase-request generation.
package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/internal/schedule"
)

// Engine classifies stock levels and generates purchase requests.
// Pure computation: identical inputs always yield identical output.
type Engine struct {
	schedule   *schedule.Model
	bufferDays float64
}

// New creates an engine over the given schedule model.
func New(sched *schedule.Model, bufferDays float64) *Engine {
	return &Engine{schedule: sched, bufferDays: bufferDays}
}

// Classify computes the status of one item given its on-hand quantity.
// A nil onHand means no count was recorded and yields StatusMissing.
func (e *Engine) Classify(item model.Item, onHand *float64, now time.Time) (model.ItemStatus, error) {
	coverage, err := e.schedule.CoverageDays(item.Location, now)
	if err != nil {
		return model.ItemStatus{}, fmt.Errorf("coverage for %s: %w", item.Name, err)
	}

	required := item.ADU * (coverage + e.bufferDays)
	st := model.ItemStatus{
		Item:     item,
		OnHand:   onHand,
		Required: required,
	}

	if onHand == nil {
		st.Status = model.StatusMissing
		zero := 0.0
		st.DaysOfStock = &zero
		return st, nil
	}

	days := 0.0
	if item.ADU > 0 {
		days = *onHand / item.ADU
	}
	st.DaysOfStock = &days

	switch {
	case *onHand < required:
		st.Status = model.StatusRed
	case *onHand < item.ParLevel:
		st.Status = model.StatusYellow
	default:
		st.Status = model.StatusGreen
	}
	return st, nil
}

// ClassifyAll classifies every item, ordered by name ascending.
func (e *Engine) ClassifyAll(items []model.Item, onHand map[string]float64, now time.Time) ([]model.ItemStatus, error) {
	out := make([]model.ItemStatus, 0, len(items))
	for _, item := range items {
		var qty *float64
		if v, ok := onHand[item.Name]; ok {
			q := v
			qty = &q
		}
		st, err := e.Classify(item, qty, now)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Name < out[j].Item.Name })
	return out, nil
}

// GenerateRequests computes purchase quantities for a location on the
// given request weekday. Quantities round up, never under-ordering.
// Fully stocked items stay in the result flagged so callers can render
// a complete report. Output is ordered by item name ascending.
func (e *Engine) GenerateRequests(loc model.Location, weekday time.Weekday, items []model.Item, onHand map[string]float64) ([]model.RequestLine, schedule.Window, error) {
	window, ok := e.schedule.WindowFor(loc, weekday)
	if !ok {
		return nil, schedule.Window{}, fmt.Errorf("no request window for %s on %s", loc, weekday)
	}

	coverage := window.TotalDays + e.bufferDays
	lines := make([]model.RequestLine, 0, len(items))
	for _, item := range items {
		if item.Location != loc {
			continue
		}
		oh := onHand[item.Name]
		needed := item.ADU * coverage
		shortfall := needed - oh
		requested := 0
		if shortfall > 0 {
			requested = int(math.Ceil(shortfall))
		}
		lines = append(lines, model.RequestLine{
			Item:         item,
			OnHand:       oh,
			Needed:       needed,
			Requested:    requested,
			FullyStocked: requested == 0,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Item.Name < lines[j].Item.Name })
	return lines, window, nil
}

// Needed filters request lines to those requiring action.
func Needed(lines []model.RequestLine) []model.RequestLine {
	out := make([]model.RequestLine, 0, len(lines))
	for _, l := range lines {
		if !l.FullyStocked {
			out = append(out, l)
		}
	}
	return out
}
