package inject

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
)

func TestStraightLineAdvancesAtTenMetersPerSecond(t *testing.T) {
	t.Parallel()

	dwells := StraightLine(6)
	require.Len(t, dwells, 6)
	for i, d := range dwells {
		require.Len(t, d.Detections, 1)
		assert.Equal(t, uint64(i)*cyclePeriodUs, d.TimestampUs)
		c := detection.SphericalToCartesian(d.Detections[0].Range, d.Detections[0].Azimuth, d.Detections[0].Elevation)
		assert.InDelta(t, 1000.0+float64(i), c.X, 1e-6) // 10 m/s over a 100 ms cycle
	}
}

func TestDisappearingAppendsEmptyDwells(t *testing.T) {
	t.Parallel()

	dwells := Disappearing(12)
	require.Len(t, dwells, 17)
	for i := 5; i < 17; i++ {
		assert.Empty(t, dwells[i].Detections)
	}
}

func TestCrossingTargetsMeetNearMidpoint(t *testing.T) {
	t.Parallel()

	dwells := Crossing(201)
	mid := dwells[100]
	require.Len(t, mid.Detections, 2)
	assert.InDelta(t, mid.Detections[0].Range, mid.Detections[1].Range, 50)
}

func TestClutterOnlyProducesFourDetections(t *testing.T) {
	t.Parallel()

	d := ClutterOnly(5000, 3000, 1000)
	assert.Len(t, d.Detections, 4)
}

func TestJPDAAmbiguousProducesSymmetricOffsets(t *testing.T) {
	t.Parallel()

	d := JPDAAmbiguous(5000, 3000, 1000, 30)
	require.Len(t, d.Detections, 2)
	for _, det := range d.Detections {
		c := detection.SphericalToCartesian(det.Range, det.Azimuth, det.Elevation)
		dist := math.Sqrt((c.X-5000)*(c.X-5000) + (c.Y-3000)*(c.Y-3000) + (c.Z-1000)*(c.Z-1000))
		assert.InDelta(t, 30.0, dist, 1e-6)
	}
}

func TestTurningTracesACircle(t *testing.T) {
	t.Parallel()

	dwells := Turning(20, 1000, 0.2, 500)
	require.Len(t, dwells, 20)
	for _, d := range dwells {
		require.Len(t, d.Detections, 1)
		c := detection.SphericalToCartesian(d.Detections[0].Range, d.Detections[0].Azimuth, d.Detections[0].Elevation)
		horizontal := math.Sqrt(c.X*c.X + c.Y*c.Y)
		assert.InDelta(t, 1000.0, horizontal, 1.0)
	}
}
