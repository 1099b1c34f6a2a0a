package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
)

func TestEncodeDecodeDwellRoundTrip(t *testing.T) {
	t.Parallel()

	d := detection.Dwell{
		DwellCount:  5,
		TimestampUs: 123456789,
		Detections: []detection.Detection{
			{Range: 1000, Azimuth: 0.1, Elevation: 0.05, Strength: -40, Noise: -90, SNR: 30, RCS: -5, MicroDoppler: 12.5},
			{Range: 2000, Azimuth: -0.5, Elevation: 0.2, Strength: -35, Noise: -85, SNR: 25, RCS: 0, MicroDoppler: 0},
		},
	}

	buf := EncodeDwell(d)
	decoded, err := DecodeDwell(buf)
	require.NoError(t, err)

	assert.Equal(t, MsgDetection, decoded.MessageID)
	assert.Equal(t, d.DwellCount, decoded.DwellCount)
	assert.Equal(t, d.TimestampUs, decoded.TimestampUs)
	require.Len(t, decoded.Detections, 2)
	assert.Equal(t, d.Detections[0], decoded.Detections[0])
	assert.Equal(t, d.Detections[1], decoded.Detections[1])
}

func TestDecodeDwellRejectsTruncatedBuffer(t *testing.T) {
	t.Parallel()

	_, err := DecodeDwell([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeDwellRejectsWrongMessageID(t *testing.T) {
	t.Parallel()

	d := detection.Dwell{DwellCount: 1, TimestampUs: 1}
	buf := EncodeDwell(d)
	buf[0] = 0xFF
	_, err := DecodeDwell(buf)
	assert.Error(t, err)
}

func sampleTrackUpdate() TrackUpdate {
	return TrackUpdate{
		TrackID: 42, TimestampUs: 999, Status: 1, Classification: 2,
		Range: 1234.5, Azimuth: 0.3, Elevation: 0.1, RangeRate: 5.5,
		X: 100, Y: 200, Z: 50, Vx: 10, Vy: -2, Vz: 0.5,
		TrackQuality: 0.87, HitCount: 10, MissCount: 1, Age: 20,
	}
}

func TestEncodeTrackUpdateIs128Bytes(t *testing.T) {
	t.Parallel()

	buf := EncodeTrackUpdate(sampleTrackUpdate())
	assert.Len(t, buf, 128)
}

func TestTrackUpdateRoundTripIsBitExact(t *testing.T) {
	t.Parallel()

	u := sampleTrackUpdate()
	buf := EncodeTrackUpdate(u)

	decoded, err := DecodeTrackUpdate(buf)
	require.NoError(t, err)
	assert.Equal(t, u, decoded)
}

func TestTrackTableRoundTrip(t *testing.T) {
	t.Parallel()

	updates := []TrackUpdate{sampleTrackUpdate(), sampleTrackUpdate()}
	updates[1].TrackID = 43

	buf := EncodeTrackTable(555, updates)
	nowUs, decoded, err := DecodeTrackTable(buf)
	require.NoError(t, err)

	assert.Equal(t, uint64(555), nowUs)
	require.Len(t, decoded, 2)
	if diff := cmp.Diff(updates[0], decoded[0]); diff != "" {
		t.Errorf("decoded track update mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint32(43), decoded[1].TrackID)
}

func TestTrackTableEmpty(t *testing.T) {
	t.Parallel()

	buf := EncodeTrackTable(1, nil)
	nowUs, decoded, err := DecodeTrackTable(buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nowUs)
	assert.Empty(t, decoded)
}
