// Package inject builds synthetic detection dwell sequences for the
// deterministic end-to-end scenarios used to exercise the tracker without a
// live radar feed: a pcap-style replay tool, or a test harness, can drive
// the pipeline directly off these sequences.
package inject

import (
	"math"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
)

const cyclePeriodUs = 100000 // 100 ms, matching the deterministic scenario cycle

func detectionAt(x, y, z float64) detection.Detection {
	sph := detection.CartesianToSpherical(x, y, z)
	return detection.Detection{
		Range: sph.Range, Azimuth: sph.Azimuth, Elevation: sph.Elevation,
		Strength: -30, Noise: -90, SNR: 40, RCS: 0,
	}
}

// StraightLine produces n dwells of a single point moving at (10,0,0) m/s
// starting at (1000,0,100) m, one detection per dwell, no clutter.
func StraightLine(n int) []detection.Dwell {
	dwells := make([]detection.Dwell, n)
	for i := 0; i < n; i++ {
		t := float64(i) * float64(cyclePeriodUs) / 1e6
		x, y, z := 1000+10*t, 0.0, 100.0
		dwells[i] = detection.Dwell{
			DwellCount: uint32(i), TimestampUs: uint64(i) * cyclePeriodUs,
			Detections: []detection.Detection{detectionAt(x, y, z)},
		}
	}
	return dwells
}

// Disappearing replays StraightLine through dwell 5 (0-indexed 0..4), then
// appends emptyCount dwells carrying no detections at all.
func Disappearing(emptyCount int) []detection.Dwell {
	live := StraightLine(5)
	out := append([]detection.Dwell{}, live...)
	for i := 0; i < emptyCount; i++ {
		idx := len(live) + i
		out = append(out, detection.Dwell{DwellCount: uint32(idx), TimestampUs: uint64(idx) * cyclePeriodUs})
	}
	return out
}

// Crossing produces n dwells containing two noiseless targets moving at
// ±5 m/s along x, crossing paths at t=10s (dwell index 100 at a 100ms cycle).
func Crossing(n int) []detection.Dwell {
	dwells := make([]detection.Dwell, n)
	for i := 0; i < n; i++ {
		t := float64(i) * float64(cyclePeriodUs) / 1e6
		xa := -50 + 5*t
		xb := 50 - 5*t
		dwells[i] = detection.Dwell{
			DwellCount: uint32(i), TimestampUs: uint64(i) * cyclePeriodUs,
			Detections: []detection.Detection{
				detectionAt(xa, 2000, 500),
				detectionAt(xb, 2000, 500),
			},
		}
	}
	return dwells
}

// ClutterOnly produces one dwell with a confirmed-track-friendly detection
// plus 3 gate-missing clutter returns generated from a fixed deterministic
// spread (not math/rand, so repeated runs are bit-identical).
func ClutterOnly(trackX, trackY, trackZ float64) detection.Dwell {
	offsets := [3][3]float64{
		{4000, 4000, 50},
		{-3000, 5000, 800},
		{6000, -2000, 1200},
	}
	dets := make([]detection.Detection, 0, 4)
	dets = append(dets, detectionAt(trackX, trackY, trackZ))
	for _, o := range offsets {
		dets = append(dets, detectionAt(o[0], o[1], o[2]))
	}
	return detection.Dwell{Detections: dets}
}

// JPDAAmbiguous produces one dwell with two gated measurements equidistant
// from the predicted position, on opposite sides along x.
func JPDAAmbiguous(predictedX, predictedY, predictedZ, offset float64) detection.Dwell {
	return detection.Dwell{
		Detections: []detection.Detection{
			detectionAt(predictedX-offset, predictedY, predictedZ),
			detectionAt(predictedX+offset, predictedY, predictedZ),
		},
	}
}

// Turning produces n dwells of a target on a circular trajectory of radius
// radiusM at angular rate omega (rad/s), centered on the origin at altitude
// altitudeM.
func Turning(n int, radiusM, omega, altitudeM float64) []detection.Dwell {
	dwells := make([]detection.Dwell, n)
	for i := 0; i < n; i++ {
		t := float64(i) * float64(cyclePeriodUs) / 1e6
		x := radiusM * math.Cos(omega*t)
		y := radiusM * math.Sin(omega*t)
		dwells[i] = detection.Dwell{
			DwellCount: uint32(i), TimestampUs: uint64(i) * cyclePeriodUs,
			Detections: []detection.Detection{detectionAt(x, y, altitudeM)},
		}
	}
	return dwells
}
