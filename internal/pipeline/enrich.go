package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"github.com/couchcryptid/iloc-catalog-etl/internal/observability"
)

// ErrRelocation marks an event whose stations were selected but whose
// relocation failed.
var ErrRelocation = errors.New("relocation failed")

// EventEnricher implements Enricher: it selects stations around the event's
// best-guess origin and hands them to the relocator.
type EventEnricher struct {
	selector  domain.StationSelector
	relocator domain.Relocator
	maxPct    float64
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewEnricher creates an EventEnricher. Pass a nil relocator to skip
// relocation.
func NewEnricher(selector domain.StationSelector, relocator domain.Relocator, maxPct float64, logger *slog.Logger, metrics *observability.Metrics) *EventEnricher {
	return &EventEnricher{
		selector:  selector,
		relocator: relocator,
		maxPct:    maxPct,
		logger:    logger,
		metrics:   metrics,
	}
}

// Enrich selects stations for the event's best-guess origin and, when the
// relocator returns an origin, appends it to the event as the preferred one.
//
// The returned EnrichedEvent always carries the source event. On error it
// holds whatever was computed before the failure.
func (e *EventEnricher) Enrich(ctx context.Context, event domain.Event) (domain.EnrichedEvent, error) {
	out := domain.EnrichedEvent{Event: event}

	origin, err := event.BestOrigin()
	if err != nil {
		return out, fmt.Errorf("event %s: %w", event.ID, err)
	}
	out.OriginID = origin.ID

	sel, err := e.selector.Select(origin, e.maxPct)
	if err != nil {
		return out, fmt.Errorf("event %s: %w", event.ID, err)
	}
	out.Selection = &sel
	e.metrics.StationsSelected.Observe(float64(len(sel.Stations)))

	e.logger.DebugContext(ctx, "stations selected",
		"event_id", event.ID,
		"origin_id", origin.ID,
		"selected", len(sel.Stations),
		"max_delta", sel.MaxDelta,
		"threshold", sel.Threshold,
	)

	if e.relocator == nil {
		return out, nil
	}

	relocated, err := e.relocator.Relocate(ctx, event, sel.Stations)
	if err != nil {
		return out, fmt.Errorf("event %s: %w: %w", event.ID, ErrRelocation, err)
	}
	if relocated != nil {
		out.Event = event.WithRelocatedOrigin(*relocated)
		out.Relocated = true
		e.metrics.RelocatedOrigins.Inc()
		e.logger.InfoContext(ctx, "origin relocated",
			"event_id", event.ID,
			"origin_id", relocated.ID,
			"previous_origin_id", origin.ID,
		)
	}
	return out, nil
}

// errorReason maps an enrichment error to its event_errors_total label.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoOrigin):
		return "no_origin"
	case errors.Is(err, domain.ErrNoArrivals):
		return "no_arrivals"
	case errors.Is(err, domain.ErrStationNotFound):
		return "station_not_found"
	case errors.Is(err, ErrRelocation):
		return "relocation"
	default:
		return "other"
	}
}
