package iloc

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.Relocator = (*Relocator)(nil)

func TestRelocate_NoOrigin(t *testing.T) {
	r := NewRelocator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	origin, err := r.Relocate(context.Background(), domain.Event{ID: "evt-1"}, []domain.SelectedStation{
		{Station: domain.Station{Code: "CNB"}, Delta: 1.2},
	})

	require.NoError(t, err)
	assert.Nil(t, origin)
}

func TestRelocate_CancelledContext(t *testing.T) {
	r := NewRelocator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	origin, err := r.Relocate(ctx, domain.Event{ID: "evt-1"}, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, origin)
}
