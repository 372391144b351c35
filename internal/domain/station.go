package domain

import (
	"fmt"
	"strings"
)

// Station is a seismic recording site from the inventory.
type Station struct {
	Code        string  `json:"station_code" yaml:"station_code"`
	NetworkCode string  `json:"network_code,omitempty" yaml:"network_code"`
	Latitude    float64 `json:"latitude" yaml:"latitude"`
	Longitude   float64 `json:"longitude" yaml:"longitude"`
	Elevation   float64 `json:"elevation" yaml:"elevation"` // metres
}

// Inventory is the read-only station table: the ordered station list and a
// lookup by station code. Build it once with NewInventory and share it.
type Inventory struct {
	stations []Station
	byCode   map[string]Station
}

// NewInventory validates stations and builds the lookup. Codes must be
// non-empty and unique, and coordinates must lie on the globe.
func NewInventory(stations []Station) (*Inventory, error) {
	if len(stations) == 0 {
		return nil, ErrEmptyInventory
	}

	inv := &Inventory{
		stations: make([]Station, 0, len(stations)),
		byCode:   make(map[string]Station, len(stations)),
	}
	for i, s := range stations {
		s.Code = strings.TrimSpace(s.Code)
		if s.Code == "" {
			return nil, fmt.Errorf("station %d: empty station code", i)
		}
		if _, dup := inv.byCode[s.Code]; dup {
			return nil, fmt.Errorf("station %d: duplicate station code %q", i, s.Code)
		}
		if !validCoordinates(s.Latitude, s.Longitude) {
			return nil, fmt.Errorf("station %q: coordinates out of range (%g, %g)", s.Code, s.Latitude, s.Longitude)
		}
		inv.stations = append(inv.stations, s)
		inv.byCode[s.Code] = s
	}
	return inv, nil
}

// Len returns the number of stations.
func (inv *Inventory) Len() int { return len(inv.stations) }

// Stations returns a copy of the station list in inventory order.
func (inv *Inventory) Stations() []Station {
	out := make([]Station, len(inv.stations))
	copy(out, inv.stations)
	return out
}

// Lookup returns the station with the given code.
func (inv *Inventory) Lookup(code string) (Station, bool) {
	s, ok := inv.byCode[code]
	return s, ok
}
