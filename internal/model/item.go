// Package model defines the core inventory domain types.
package model

import "fmt"

// Location identifies a restaurant site.
type Location string

const (
	LocationAvondale   Location = "avondale"
	LocationCommissary Location = "commissary"
)

// AllLocations lists the known sites in display order.
var AllLocations = []Location{LocationAvondale, LocationCommissary}

// ParseLocation validates a location token.
func ParseLocation(s string) (Location, error) {
	switch Location(s) {
	case LocationAvondale:
		return LocationAvondale, nil
	case LocationCommissary:
		return LocationCommissary, nil
	default:
		return "", fmt.Errorf("unknown location %q", s)
	}
}

// Display returns the human-readable location name.
func (l Location) Display() string {
	switch l {
	case LocationAvondale:
		return "Avondale"
	case LocationCommissary:
		return "Commissary"
	default:
		return string(l)
	}
}

// UnitType is the unit an item is counted in.
type UnitType string

const (
	UnitCase   UnitType = "case"
	UnitQuart  UnitType = "quart"
	UnitTray   UnitType = "tray"
	UnitBag    UnitType = "bag"
	UnitBottle UnitType = "bottle"
)

// Plural returns the unit name for the given quantity (1 case, 2 cases).
func (u UnitType) Plural(qty float64) string {
	if qty == 1 {
		return string(u)
	}
	return string(u) + "s"
}

// Item is a catalog entry for a single tracked product.
type Item struct {
	Name     string   `json:"name"`
	Location Location `json:"location"`
	ADU      float64  `json:"adu"`
	Unit     UnitType `json:"unit"`
	ParLevel float64  `json:"par_level"`
}
