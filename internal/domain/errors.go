package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoArrivals means an origin has no arrivals, so there is no farthest
	// station to derive a search radius from.
	ErrNoArrivals = errors.New("origin has no arrivals")

	// ErrStationNotFound means an arrival references a station code missing
	// from the inventory.
	ErrStationNotFound = errors.New("station not found in inventory")

	// ErrNoOrigin means an event carries no origins.
	ErrNoOrigin = errors.New("event has no origins")

	// ErrInvalidPercentage means the distance percentage is negative or not finite.
	ErrInvalidPercentage = errors.New("invalid station distance percentage")

	// ErrEmptyInventory means an inventory was built from zero stations.
	ErrEmptyInventory = errors.New("inventory has no stations")
)

// StationLookupError reports the station code an arrival could not resolve.
// It matches ErrStationNotFound with errors.Is.
type StationLookupError struct {
	Code      string
	ArrivalID string
}

func (e *StationLookupError) Error() string {
	if e.ArrivalID == "" {
		return fmt.Sprintf("station %q not found in inventory", e.Code)
	}
	return fmt.Sprintf("station %q (arrival %s) not found in inventory", e.Code, e.ArrivalID)
}

func (e *StationLookupError) Is(target error) bool {
	return target == ErrStationNotFound
}
