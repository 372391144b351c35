package domain

import (
	"fmt"
	"math"
)

// phaseSeparator joins phase labels observed at the same station.
const phaseSeparator = " & "

// StationSelector chooses inventory stations for an origin.
type StationSelector interface {
	Select(origin Origin, maxPct float64) (Selection, error)
}

// InventorySelector is the uncached StationSelector over a fixed inventory.
type InventorySelector struct {
	Inventory *Inventory
}

// Select implements StationSelector.
func (s InventorySelector) Select(origin Origin, maxPct float64) (Selection, error) {
	return SelectStations(s.Inventory, origin, maxPct)
}

// SelectStations returns the inventory stations closer to origin than maxPct
// percent of the distance to the farthest station with an arrival.
//
// It fails with ErrNoArrivals when the origin has no arrivals and with a
// *StationLookupError when an arrival's station is not in the inventory.
// Stations are returned in inventory order; the inventory is not modified.
func SelectStations(inv *Inventory, origin Origin, maxPct float64) (Selection, error) {
	if math.IsNaN(maxPct) || math.IsInf(maxPct, 0) || maxPct < 0 {
		return Selection{}, fmt.Errorf("%w: %g", ErrInvalidPercentage, maxPct)
	}

	maxDelta, hints, err := farthestArrival(inv, origin)
	if err != nil {
		return Selection{}, err
	}

	threshold := maxPct / 100 * maxDelta
	selected := make([]SelectedStation, 0)
	for _, s := range inv.stations {
		d := originDelta(origin, s)
		if d < threshold {
			selected = append(selected, SelectedStation{
				Station:   s,
				Delta:     d,
				PhaseHint: hints[s.Code],
			})
		}
	}

	return Selection{
		OriginID:  origin.ID,
		MaxDelta:  maxDelta,
		MaxPct:    maxPct,
		Threshold: threshold,
		Stations:  selected,
	}, nil
}

// farthestArrival returns the largest origin-to-station distance over the
// origin's arrivals and the phase hint for every station they reference.
func farthestArrival(inv *Inventory, origin Origin) (float64, map[string]string, error) {
	if len(origin.Arrivals) == 0 {
		if origin.ID == "" {
			return 0, nil, ErrNoArrivals
		}
		return 0, nil, fmt.Errorf("origin %s: %w", origin.ID, ErrNoArrivals)
	}

	maxDelta := 0.0
	hints := make(map[string]string, len(origin.Arrivals))
	for _, arr := range origin.Arrivals {
		sta, ok := inv.Lookup(arr.StationCode)
		if !ok {
			return 0, nil, &StationLookupError{Code: arr.StationCode, ArrivalID: arr.ID}
		}
		if d := originDelta(origin, sta); d > maxDelta {
			maxDelta = d
		}
		if prev, seen := hints[sta.Code]; seen {
			hints[sta.Code] = prev + phaseSeparator + arr.Phase
		} else {
			hints[sta.Code] = arr.Phase
		}
	}
	return maxDelta, hints, nil
}
