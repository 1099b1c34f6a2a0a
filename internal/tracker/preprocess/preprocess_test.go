package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
)

func defaultBounds() Bounds {
	return Bounds{
		MinRange: 50, MaxRange: 20000,
		MinAzimuth: -3.15, MaxAzimuth: 3.15,
		MinElevation: -0.1745, MaxElevation: 1.5708,
		MinSNR: 8, MaxSNR: 60,
		MinRCS: -30, MaxRCS: 20,
		MinStrength: -100, MaxStrength: 0,
	}
}

func TestProcessPreservesOrderAndFiltersOutOfBounds(t *testing.T) {
	t.Parallel()

	p := &Preprocessor{Bounds: defaultBounds()}
	dets := []detection.Detection{
		{Range: 1000, Azimuth: 0, Elevation: 0, SNR: 20, RCS: 0, Strength: -20},
		{Range: 30, Azimuth: 0, Elevation: 0, SNR: 20, RCS: 0, Strength: -20}, // below min range
		{Range: 2000, Azimuth: 0, Elevation: 0, SNR: 2, RCS: 0, Strength: -20}, // below min SNR
	}

	out := p.Process(dets)
	assert.Len(t, out, 1)
	assert.Equal(t, 1000.0, out[0].Range)
	assert.Equal(t, uint64(2), p.Rejected)
	assert.Equal(t, uint64(3), p.Processed)
}

func TestBoundaryValuesAreInclusive(t *testing.T) {
	t.Parallel()

	b := defaultBounds()
	p := &Preprocessor{Bounds: b}
	d := detection.Detection{Range: b.MinRange, Azimuth: b.MinAzimuth, Elevation: b.MinElevation, SNR: b.MinSNR, RCS: b.MinRCS, Strength: b.MinStrength}

	out := p.Process([]detection.Detection{d})
	assert.Len(t, out, 1)
}

func TestRejectedCounterAccumulatesAcrossCalls(t *testing.T) {
	t.Parallel()

	p := &Preprocessor{Bounds: defaultBounds()}
	bad := detection.Detection{Range: 1}
	p.Process([]detection.Detection{bad})
	p.Process([]detection.Detection{bad})
	assert.Equal(t, uint64(2), p.Rejected)
}
