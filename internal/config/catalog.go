package config

import "github.com/ladiossato/k2-inventory/internal/model"

// DefaultCatalog returns the seed item catalog for both locations.
// The store is seeded from this on first start; later edits live in
// the database.
func DefaultCatalog() []model.Item {
	return []model.Item{
		{Name: "Steak", Location: model.LocationAvondale, ADU: 1.8, Unit: model.UnitCase, ParLevel: 6},
		{Name: "Salmon", Location: model.LocationAvondale, ADU: 0.9, Unit: model.UnitCase, ParLevel: 3},
		{Name: "Chipotle Aioli", Location: model.LocationAvondale, ADU: 8.0, Unit: model.UnitQuart, ParLevel: 24},
		{Name: "Garlic Aioli", Location: model.LocationAvondale, ADU: 6.0, Unit: model.UnitQuart, ParLevel: 18},
		{Name: "Jalapeno Aioli", Location: model.LocationAvondale, ADU: 5.0, Unit: model.UnitQuart, ParLevel: 15},
		{Name: "Sriracha Aioli", Location: model.LocationAvondale, ADU: 2.0, Unit: model.UnitQuart, ParLevel: 6},
		{Name: "Ponzu Sauce", Location: model.LocationAvondale, ADU: 3.0, Unit: model.UnitQuart, ParLevel: 9},
		{Name: "Teriyaki/Soyu Sauce", Location: model.LocationAvondale, ADU: 3.0, Unit: model.UnitQuart, ParLevel: 9},
		{Name: "Orange Sauce", Location: model.LocationAvondale, ADU: 4.0, Unit: model.UnitQuart, ParLevel: 12},
		{Name: "Bulgogi Sauce", Location: model.LocationAvondale, ADU: 3.0, Unit: model.UnitQuart, ParLevel: 9},
		{Name: "Fried Rice Sauce", Location: model.LocationAvondale, ADU: 4.0, Unit: model.UnitQuart, ParLevel: 12},
		{Name: "Honey", Location: model.LocationAvondale, ADU: 2.0, Unit: model.UnitBottle, ParLevel: 6},

		{Name: "Fish", Location: model.LocationCommissary, ADU: 0.3, Unit: model.UnitTray, ParLevel: 1},
		{Name: "Shrimp", Location: model.LocationCommissary, ADU: 0.5, Unit: model.UnitTray, ParLevel: 2},
		{Name: "Grilled Chicken", Location: model.LocationCommissary, ADU: 2.5, Unit: model.UnitCase, ParLevel: 8},
		{Name: "Crispy Chicken", Location: model.LocationCommissary, ADU: 3.5, Unit: model.UnitCase, ParLevel: 11},
		{Name: "Crab Ragoon", Location: model.LocationCommissary, ADU: 1.9, Unit: model.UnitBag, ParLevel: 6},
		{Name: "Nutella Ragoon", Location: model.LocationCommissary, ADU: 0.7, Unit: model.UnitBag, ParLevel: 3},
		{Name: "Ponzu Cups", Location: model.LocationCommissary, ADU: 0.8, Unit: model.UnitQuart, ParLevel: 3},
	}
}
