package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelta(t *testing.T) {
	cases := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		want       float64
		tolerance  float64
	}{
		{name: "same point", lat1: -35.3, lon1: 149.1, lat2: -35.3, lon2: 149.1, want: 0, tolerance: 0},
		{name: "equator quarter", lat1: 0, lon1: 0, lat2: 0, lon2: 90, want: 90, tolerance: 1e-9},
		{name: "antipodal on equator", lat1: 0, lon1: 0, lat2: 0, lon2: 180, want: 180, tolerance: 1e-9},
		{name: "pole to pole", lat1: 90, lon1: 0, lat2: -90, lon2: 0, want: 180, tolerance: 1e-9},
		{name: "antipodal off axis", lat1: 30, lon1: 45, lat2: -30, lon2: -135, want: 180, tolerance: 1e-6},
		{name: "across dateline", lat1: 0, lon1: 179, lat2: 0, lon2: -179, want: 2, tolerance: 1e-9},
		{name: "meridian", lat1: -10, lon1: 120, lat2: 25, lon2: 120, want: 35, tolerance: 1e-9},
		// Canberra to Perth, ~3090 km.
		{name: "canberra perth", lat1: -35.28, lon1: 149.13, lat2: -31.95, lon2: 115.86, want: 27.8, tolerance: 0.1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Delta(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tc.want, got, tc.tolerance)
		})
	}
}

func TestDelta_Symmetric(t *testing.T) {
	a := Delta(12.5, -70.1, -44.2, 171.9)
	b := Delta(-44.2, 171.9, 12.5, -70.1)
	assert.InDelta(t, a, b, 1e-12)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, validCoordinates(90, 180))
	assert.True(t, validCoordinates(-90, -180))
	assert.False(t, validCoordinates(90.5, 0))
	assert.False(t, validCoordinates(0, 181))
	assert.False(t, validCoordinates(math.NaN(), 0))
}
