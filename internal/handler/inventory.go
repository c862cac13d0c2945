package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ladiossato/k2-inventory/internal/engine"
	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/internal/schedule"
)

// SnapshotReader reads persisted counts.
type SnapshotReader interface {
	LatestOnHand(ctx context.Context, loc model.Location, onOrBefore time.Time) (map[string]float64, error)
	MissingItems(ctx context.Context, loc model.Location, date time.Time) ([]string, error)
}

// Catalog resolves the active item list per location.
type Catalog interface {
	ItemsForLocation(ctx context.Context, loc model.Location) ([]model.Item, error)
}

// InventoryHandler serves read-only inventory state.
type InventoryHandler struct {
	catalog   Catalog
	snapshots SnapshotReader
	engine    *engine.Engine
	schedule  *schedule.Model
	tz        *time.Location
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(cat Catalog, snapshots SnapshotReader, eng *engine.Engine, sched *schedule.Model, tz *time.Location) *InventoryHandler {
	return &InventoryHandler{
		catalog:   cat,
		snapshots: snapshots,
		engine:    eng,
		schedule:  sched,
		tz:        tz,
	}
}

type statusResponse struct {
	Location     model.Location     `json:"location"`
	AsOf         time.Time          `json:"as_of"`
	NextDelivery time.Time          `json:"next_delivery"`
	DaysUntil    float64            `json:"days_until_delivery"`
	Items        []model.ItemStatus `json:"items"`
	Missing      []string           `json:"missing_counts"`
}

// Status handles GET /api/v1/locations/{location}/status
func (h *InventoryHandler) Status(w http.ResponseWriter, r *http.Request) {
	loc, err := model.ParseLocation(chi.URLParam(r, "location"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown location")
		return
	}

	ctx := r.Context()
	now := time.Now().In(h.tz)

	items, err := h.catalog.ItemsForLocation(ctx, loc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	onHand, err := h.snapshots.LatestOnHand(ctx, loc, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load counts")
		return
	}
	statuses, err := h.engine.ClassifyAll(items, onHand, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to classify items")
		return
	}
	daysUntil, deliveryDate, err := h.schedule.NextDelivery(loc, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve delivery schedule")
		return
	}
	missing, err := h.snapshots.MissingItems(ctx, loc, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load missing counts")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Location:     loc,
		AsOf:         now,
		NextDelivery: deliveryDate,
		DaysUntil:    daysUntil,
		Items:        statuses,
		Missing:      missing,
	})
}

type requestsResponse struct {
	Location model.Location      `json:"location"`
	AsOf     time.Time           `json:"as_of"`
	Window   string              `json:"window"`
	Lines    []model.RequestLine `json:"lines"`
}

// Requests handles GET /api/v1/locations/{location}/requests. It
// previews today's purchase request without persisting a batch; the
// bot's /order command owns persistence.
func (h *InventoryHandler) Requests(w http.ResponseWriter, r *http.Request) {
	loc, err := model.ParseLocation(chi.URLParam(r, "location"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown location")
		return
	}

	ctx := r.Context()
	now := time.Now().In(h.tz)

	if _, ok := h.schedule.WindowFor(loc, now.Weekday()); !ok {
		writeError(w, http.StatusConflict, "no ordering window today")
		return
	}

	items, err := h.catalog.ItemsForLocation(ctx, loc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	onHand, err := h.snapshots.LatestOnHand(ctx, loc, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load counts")
		return
	}
	lines, window, err := h.engine.GenerateRequests(loc, now.Weekday(), items, onHand)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate requests")
		return
	}

	writeJSON(w, http.StatusOK, requestsResponse{
		Location: loc,
		AsOf:     now,
		Window:   window.Label,
		Lines:    lines,
	})
}
