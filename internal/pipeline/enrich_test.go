package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"github.com/couchcryptid/iloc-catalog-etl/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnricher(t *testing.T, reloc domain.Relocator, maxPct float64) *pipeline.EventEnricher {
	t.Helper()
	selector := domain.InventorySelector{Inventory: equatorInventory(t)}
	return pipeline.NewEnricher(selector, reloc, maxPct, discardLogger(), newTestMetrics())
}

func TestEventEnricher_UsesPreferredOrigin(t *testing.T) {
	e := newEnricher(t, nil, 150)

	out, err := e.Enrich(context.Background(), goodEvent("evt-1"))
	require.NoError(t, err)

	assert.Equal(t, "evt-1/origin/2", out.OriginID)
	require.NotNil(t, out.Selection)
	assert.Equal(t, "evt-1/origin/2", out.Selection.OriginID)
	assert.Len(t, out.Selection.Stations, 4)
	assert.False(t, out.Relocated)
	assert.Empty(t, out.Error)
}

func TestEventEnricher_FallsBackToFirstOrigin(t *testing.T) {
	e := newEnricher(t, nil, 100)
	ev := goodEvent("evt-1")
	ev.PreferredOriginID = "evt-1/origin/missing"
	ev.Origins[0], ev.Origins[1] = ev.Origins[1], ev.Origins[0]

	out, err := e.Enrich(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "evt-1/origin/2", out.OriginID)
}

func TestEventEnricher_NilRelocationKeepsEvent(t *testing.T) {
	reloc := &mockRelocator{}
	e := newEnricher(t, reloc, 100)
	ev := goodEvent("evt-1")

	out, err := e.Enrich(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, 1, reloc.calls)
	assert.False(t, out.Relocated)
	assert.Equal(t, ev, out.Event)
}

func TestEventEnricher_Errors(t *testing.T) {
	tests := []struct {
		name  string
		event domain.Event
		want  error
	}{
		{name: "no origins", event: domain.Event{ID: "evt-x"}, want: domain.ErrNoOrigin},
		{
			name:  "no arrivals",
			event: domain.Event{ID: "evt-x", Origins: []domain.Origin{{ID: "o1"}}},
			want:  domain.ErrNoArrivals,
		},
		{
			name: "unknown station",
			event: domain.Event{ID: "evt-x", Origins: []domain.Origin{{
				ID:       "o1",
				Arrivals: []domain.Arrival{{StationCode: "NOPE", Phase: "P"}},
			}}},
			want: domain.ErrStationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reloc := &mockRelocator{}
			e := newEnricher(t, reloc, 100)

			out, err := e.Enrich(context.Background(), tt.event)
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "event evt-x")
			assert.Nil(t, out.Selection)
			assert.Equal(t, tt.event, out.Event)
			assert.Zero(t, reloc.calls, "relocator must not run without a selection")
		})
	}
}

func TestEventEnricher_RelocationError(t *testing.T) {
	cause := errors.New("iloc timed out")
	e := newEnricher(t, &mockRelocator{err: cause}, 100)

	out, err := e.Enrich(context.Background(), goodEvent("evt-1"))
	require.ErrorIs(t, err, pipeline.ErrRelocation)
	require.ErrorIs(t, err, cause)
	assert.NotNil(t, out.Selection, "selection survives a relocation failure")
	assert.False(t, out.Relocated)
}

func TestEventEnricher_ObservesStationCount(t *testing.T) {
	metrics := newTestMetrics()
	selector := domain.InventorySelector{Inventory: equatorInventory(t)}
	e := pipeline.NewEnricher(selector, nil, 100, discardLogger(), metrics)

	_, err := e.Enrich(context.Background(), goodEvent("evt-1"))
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.StationsSelected))
}
