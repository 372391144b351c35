// Package iloc invokes the iLoc locator to relocate event origins.
package iloc

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
)

// Relocator implements domain.Relocator.
//
// Running iLoc itself is not wired in yet: Relocate reports that no
// relocation is available, which leaves every event with its original
// origins.
type Relocator struct {
	logger *slog.Logger
}

// NewRelocator creates a Relocator.
func NewRelocator(logger *slog.Logger) *Relocator {
	return &Relocator{logger: logger}
}

// Relocate returns nil, nil for every event.
// TODO: shell out to the iLoc binary with the selected stations as its
// station file once the RSTT model files ship with the image.
func (r *Relocator) Relocate(ctx context.Context, event domain.Event, stations []domain.SelectedStation) (*domain.Origin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.DebugContext(ctx, "iloc relocation not available, keeping origins",
		"event_id", event.ID,
		"stations", len(stations),
	)
	return nil, nil
}
