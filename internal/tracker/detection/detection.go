// Package detection holds the raw measurement types that enter the tracking
// pipeline before clustering, and the spherical/Cartesian conversions shared
// by every downstream stage.
package detection

import "math"

// Detection is one threshold-crossing return from the signal processor.
type Detection struct {
	Range        float64 // meters
	Azimuth      float64 // radians
	Elevation    float64 // radians
	Strength     float64 // dBm
	Noise        float64 // dBm
	SNR          float64 // dB
	RCS          float64 // dBsm
	MicroDoppler float64 // Hz
}

// Dwell is one coherent batch of detections sharing a timestamp.
type Dwell struct {
	MessageID     uint32
	DwellCount    uint32
	TimestampUs   uint64
	NumDetections uint32
	Detections    []Detection
}

// Cartesian is a Cartesian position or velocity triple.
type Cartesian struct {
	X, Y, Z float64
}

// Spherical is a range/azimuth/elevation triple.
type Spherical struct {
	Range, Azimuth, Elevation float64
}

// SphericalToCartesian converts range (m), azimuth (rad), elevation (rad)
// into Cartesian coordinates using x = r*cos(el)*cos(az),
// y = r*cos(el)*sin(az), z = r*sin(el).
func SphericalToCartesian(r, az, el float64) Cartesian {
	cosEl := math.Cos(el)
	return Cartesian{
		X: r * cosEl * math.Cos(az),
		Y: r * cosEl * math.Sin(az),
		Z: r * math.Sin(el),
	}
}

// CartesianToSpherical is the inverse of SphericalToCartesian.
func CartesianToSpherical(x, y, z float64) Spherical {
	r := math.Sqrt(x*x + y*y + z*z)
	el := 0.0
	if r > 1e-9 {
		el = math.Asin(z / r)
	}
	return Spherical{
		Range:     r,
		Azimuth:   math.Atan2(y, x),
		Elevation: el,
	}
}
