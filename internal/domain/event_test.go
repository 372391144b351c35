package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_BestOrigin(t *testing.T) {
	first := Origin{ID: "o1", Latitude: 1}
	second := Origin{ID: "o2", Latitude: 2}

	t.Run("preferred", func(t *testing.T) {
		o, err := Event{PreferredOriginID: "o2", Origins: []Origin{first, second}}.BestOrigin()
		require.NoError(t, err)
		assert.Equal(t, "o2", o.ID)
	})

	t.Run("falls back to first", func(t *testing.T) {
		o, err := Event{Origins: []Origin{first, second}}.BestOrigin()
		require.NoError(t, err)
		assert.Equal(t, "o1", o.ID)
	})

	t.Run("dangling preferred id", func(t *testing.T) {
		o, err := Event{PreferredOriginID: "gone", Origins: []Origin{first, second}}.BestOrigin()
		require.NoError(t, err)
		assert.Equal(t, "o1", o.ID)
	})

	t.Run("no origins", func(t *testing.T) {
		_, err := Event{ID: "e1"}.BestOrigin()
		assert.ErrorIs(t, err, ErrNoOrigin)
	})
}

func TestEvent_WithRelocatedOrigin(t *testing.T) {
	origins := make([]Origin, 1, 4)
	origins[0] = Origin{ID: "o1"}
	ev := Event{ID: "e1", PreferredOriginID: "o1", Origins: origins}

	out := ev.WithRelocatedOrigin(Origin{ID: "iloc"})

	assert.Equal(t, "iloc", out.PreferredOriginID)
	require.Len(t, out.Origins, 2)
	assert.Equal(t, "iloc", out.Origins[1].ID)

	assert.Equal(t, "o1", ev.PreferredOriginID)
	assert.Len(t, ev.Origins, 1)
	// spare capacity in the source slice must not be written to
	assert.Equal(t, Origin{}, origins[:2][1])
}

func TestEnrichedCatalog_Catalog(t *testing.T) {
	ec := EnrichedCatalog{
		CatalogMeta: CatalogMeta{ID: "c1", Description: "d"},
		Events: []EnrichedEvent{
			{Event: Event{ID: "e1"}, Selection: &Selection{}},
			{Event: Event{ID: "e2"}, Error: "boom"},
		},
	}

	cat := ec.Catalog()

	assert.Equal(t, "c1", cat.ID)
	require.Len(t, cat.Events, 2)
	assert.Equal(t, "e2", cat.Events[1].ID)

	e, ok := ec.Event("e2")
	require.True(t, ok)
	assert.Equal(t, "boom", e.Error)
	_, ok = ec.Event("missing")
	assert.False(t, ok)
}

func TestCreationInfo_JSONOmitsZeroTime(t *testing.T) {
	data, err := json.Marshal(CreationInfo{Author: "scevent@ga"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"author":"scevent@ga"}`, string(data))

	stamped := CreationInfo{CreationTime: time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)}
	data, err = json.Marshal(stamped)
	require.NoError(t, err)
	assert.JSONEq(t, `{"creation_time":"2024-03-01T02:00:00Z"}`, string(data))
}

func TestOrigin_JSONDepth(t *testing.T) {
	data, err := json.Marshal(Origin{ID: "o1"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "depth")

	var o Origin
	require.NoError(t, json.Unmarshal([]byte(`{"id":"o1","depth":0}`), &o))
	require.NotNil(t, o.Depth, "an explicit zero depth is kept")
	assert.Zero(t, *o.Depth)
}
