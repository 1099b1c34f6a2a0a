package detection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSphericalCartesianRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []Spherical{
		{Range: 1000, Azimuth: 0.3, Elevation: 0.1},
		{Range: 500, Azimuth: -2.5, Elevation: -0.5},
		{Range: 20000, Azimuth: math.Pi - 0.01, Elevation: 1.0},
	}

	for _, c := range cases {
		cart := SphericalToCartesian(c.Range, c.Azimuth, c.Elevation)
		back := CartesianToSpherical(cart.X, cart.Y, cart.Z)
		assert.InDelta(t, c.Range, back.Range, 1e-9)
		assert.InDelta(t, normalizeAngle(c.Azimuth), normalizeAngle(back.Azimuth), 1e-9)
		assert.InDelta(t, c.Elevation, back.Elevation, 1e-9)
	}
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func TestCartesianToSphericalAtOrigin(t *testing.T) {
	t.Parallel()

	s := CartesianToSpherical(0, 0, 0)
	assert.Equal(t, 0.0, s.Range)
	assert.Equal(t, 0.0, s.Elevation)
}
