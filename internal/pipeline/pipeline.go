package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"github.com/couchcryptid/iloc-catalog-etl/internal/observability"
)

// ErrLoadCatalog marks a run that could not read its source catalog. Such a
// run publishes nothing and never becomes ready.
var ErrLoadCatalog = errors.New("load catalog")

// CatalogSource loads the catalog to enrich.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

// Enricher turns one event into an enriched event.
type Enricher interface {
	Enrich(ctx context.Context, event domain.Event) (domain.EnrichedEvent, error)
}

// CatalogSink receives the enriched catalog at the end of a run.
type CatalogSink interface {
	Name() string
	SaveCatalog(ctx context.Context, cat domain.EnrichedCatalog) error
}

// Pipeline orchestrates a load-enrich-save run.
type Pipeline struct {
	source     CatalogSource
	enricher   Enricher
	sinks      []CatalogSink
	provenance domain.Provenance
	logger     *slog.Logger
	metrics    *observability.Metrics
	result     atomic.Pointer[domain.EnrichedCatalog]
}

// New creates a Pipeline with the given stages and observability.
func New(source CatalogSource, enricher Enricher, sinks []CatalogSink, provenance domain.Provenance, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:     source,
		enricher:   enricher,
		sinks:      sinks,
		provenance: provenance,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once a run has completed and its catalog is
// available, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.result.Load() == nil {
		return errors.New("enrichment run has not completed yet")
	}
	return nil
}

// Result returns the catalog produced by the last completed run.
func (p *Pipeline) Result() (domain.EnrichedCatalog, bool) {
	cat := p.result.Load()
	if cat == nil {
		return domain.EnrichedCatalog{}, false
	}
	return *cat, true
}

// Run loads the catalog, enriches every event, annotates provenance and hands
// the result to each sink.
//
// A failing event does not stop the run: it is kept in the output without a
// selection and its error is joined into the returned error. Sink failures
// are joined the same way. Load failures and context cancellation abort the
// run before anything is published.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	cat, err := p.source.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	p.logger.Info("catalog loaded", "catalog_id", cat.ID, "events", len(cat.Events))

	enriched, errs, err := p.enrichAll(ctx, cat)
	if err != nil {
		return err
	}
	failed := len(errs)

	for _, sink := range p.sinks {
		if err := sink.SaveCatalog(ctx, enriched); err != nil {
			p.logger.Error("sink write failed", "sink", sink.Name(), "error", err)
			p.metrics.SinkWrites.WithLabelValues(sink.Name(), "error").Inc()
			errs = append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
			continue
		}
		p.metrics.SinkWrites.WithLabelValues(sink.Name(), "success").Inc()
	}

	p.result.Store(&enriched)

	elapsed := time.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.logger.Info("enrichment run finished",
		"events", len(enriched.Events),
		"failed", failed,
		"sinks", len(p.sinks),
		"duration", elapsed,
	)
	return errors.Join(errs...)
}

// enrichAll enriches every event in order. Per-event failures are returned in
// errs; err is only set when the context is cancelled.
func (p *Pipeline) enrichAll(ctx context.Context, cat domain.Catalog) (domain.EnrichedCatalog, []error, error) {
	out := domain.EnrichedCatalog{
		CatalogMeta: domain.Annotate(cat.CatalogMeta, p.provenance),
		Events:      make([]domain.EnrichedEvent, 0, len(cat.Events)),
	}

	var errs []error
	for _, event := range cat.Events {
		if err := ctx.Err(); err != nil {
			return domain.EnrichedCatalog{}, nil, fmt.Errorf("enrich catalog: %w", err)
		}

		ev, err := p.enricher.Enrich(ctx, event)
		if err != nil {
			p.logger.Warn("event enrichment failed, keeping event unchanged",
				"event_id", event.ID,
				"error", err,
			)
			p.metrics.EventErrors.WithLabelValues(errorReason(err)).Inc()
			errs = append(errs, err)
			ev = domain.EnrichedEvent{Event: event, OriginID: ev.OriginID, Error: err.Error()}
		} else {
			p.metrics.EventsProcessed.Inc()
		}
		out.Events = append(out.Events, ev)
	}
	return out, errs, nil
}
