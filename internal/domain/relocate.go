package domain

import "context"

// Relocator produces a replacement origin for an event from its selected
// stations. A nil origin with a nil error means no relocation is available.
type Relocator interface {
	Relocate(ctx context.Context, event Event, stations []SelectedStation) (*Origin, error)
}
