// Package preprocess filters raw detections against configured
// range/angle/SNR/RCS/strength bounds before they reach clustering.
package preprocess

import "github.com/cuas-radar/tracker/internal/tracker/detection"

// Bounds holds the inclusive [min,max] gate for every detection field.
type Bounds struct {
	MinRange, MaxRange         float64
	MinAzimuth, MaxAzimuth     float64
	MinElevation, MaxElevation float64
	MinSNR, MaxSNR             float64
	MinRCS, MaxRCS             float64
	MinStrength, MaxStrength   float64
}

// Preprocessor is a pure detection filter that accumulates a rejection
// count across calls for observability.
type Preprocessor struct {
	Bounds    Bounds
	Rejected  uint64
	Processed uint64
}

func (b Bounds) accepts(d detection.Detection) bool {
	return d.Range >= b.MinRange && d.Range <= b.MaxRange &&
		d.Azimuth >= b.MinAzimuth && d.Azimuth <= b.MaxAzimuth &&
		d.Elevation >= b.MinElevation && d.Elevation <= b.MaxElevation &&
		d.SNR >= b.MinSNR && d.SNR <= b.MaxSNR &&
		d.RCS >= b.MinRCS && d.RCS <= b.MaxRCS &&
		d.Strength >= b.MinStrength && d.Strength <= b.MaxStrength
}

// Process returns the ordered subset of dets that pass every gate,
// preserving input order.
func (p *Preprocessor) Process(dets []detection.Detection) []detection.Detection {
	out := make([]detection.Detection, 0, len(dets))
	for _, d := range dets {
		p.Processed++
		if p.Bounds.accepts(d) {
			out = append(out, d)
		} else {
			p.Rejected++
		}
	}
	return out
}
