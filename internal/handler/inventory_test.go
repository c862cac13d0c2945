package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladiossato/k2-inventory/internal/engine"
	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/internal/schedule"
)

type fakeCatalog struct {
	items []model.Item
}

func (f *fakeCatalog) ItemsForLocation(ctx context.Context, loc model.Location) ([]model.Item, error) {
	return f.items, nil
}

type fakeSnapshots struct {
	onHand  map[string]float64
	missing []string
}

func (f *fakeSnapshots) LatestOnHand(ctx context.Context, loc model.Location, onOrBefore time.Time) (map[string]float64, error) {
	return f.onHand, nil
}

func (f *fakeSnapshots) MissingItems(ctx context.Context, loc model.Location, date time.Time) ([]string, error) {
	return f.missing, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	sched := schedule.NewModel(schedule.DefaultCalendars())
	require.NoError(t, sched.Validate())

	h := NewInventoryHandler(
		&fakeCatalog{items: []model.Item{
			{Name: "Steak", Location: model.LocationAvondale, ADU: 2.0, Unit: model.UnitCase, ParLevel: 10},
		}},
		&fakeSnapshots{onHand: map[string]float64{"Steak": 8}, missing: []string{"Honey"}},
		engine.New(sched, 1.0),
		sched,
		time.UTC,
	)

	r := chi.NewRouter()
	r.Get("/api/v1/locations/{location}/status", h.Status)
	r.Get("/api/v1/locations/{location}/requests", h.Requests)
	return r
}

func TestStatusEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/avondale/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.LocationAvondale, resp.Location)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Steak", resp.Items[0].Item.Name)
	assert.Equal(t, []string{"Honey"}, resp.Missing)
	assert.False(t, resp.NextDelivery.IsZero())
}

func TestStatusEndpointUnknownLocation(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/warehouse/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/avondale/requests", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// result depends on whether today is an ordering day; both paths
	// must be well-formed
	switch rec.Code {
	case http.StatusOK:
		var resp requestsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Window)
		require.Len(t, resp.Lines, 1)
		assert.GreaterOrEqual(t, resp.Lines[0].Requested, 0)
	case http.StatusConflict:
		assert.Contains(t, rec.Body.String(), "no ordering window")
	default:
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
