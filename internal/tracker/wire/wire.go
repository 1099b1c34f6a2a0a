// Package wire implements the little-endian binary codecs for the
// messages that cross the tracker's process boundary: inbound detection
// dwells and outbound track updates / track tables.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cuas-radar/tracker/internal/tracker/detection"
	"github.com/cuas-radar/tracker/internal/tracker/track"
)

const (
	MsgDetection  uint32 = 0x0001
	MsgTrackUpdate uint32 = 0x0002
	MsgTrackTable  uint32 = 0x0003
)

const detectionRecordSize = 8 * 8 // 8 float64 fields

// trackUpdateSize is the full wire size of one TrackUpdate record,
// including its own leading message id: 4(msgId)+4(trackId)+8(timestamp)+
// 4(status)+4(classification)+11*8(doubles)+3*4(counters)+4(pad) = 128.
const trackUpdateSize = 128

// DecodeDwell parses an inbound detection dwell message.
func DecodeDwell(buf []byte) (detection.Dwell, error) {
	if len(buf) < 20 {
		return detection.Dwell{}, fmt.Errorf("wire: detection message too short: %d bytes", len(buf))
	}
	r := bytes.NewReader(buf)

	var d detection.Dwell
	if err := binary.Read(r, binary.LittleEndian, &d.MessageID); err != nil {
		return detection.Dwell{}, err
	}
	if d.MessageID != MsgDetection {
		return detection.Dwell{}, fmt.Errorf("wire: unexpected message id 0x%04x", d.MessageID)
	}
	if err := binary.Read(r, binary.LittleEndian, &d.DwellCount); err != nil {
		return detection.Dwell{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &d.TimestampUs); err != nil {
		return detection.Dwell{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &d.NumDetections); err != nil {
		return detection.Dwell{}, err
	}

	expected := 20 + int(d.NumDetections)*detectionRecordSize
	if len(buf) < expected {
		return detection.Dwell{}, fmt.Errorf("wire: dwell declares %d detections but buffer is only %d bytes", d.NumDetections, len(buf))
	}

	d.Detections = make([]detection.Detection, d.NumDetections)
	for i := range d.Detections {
		fields := make([]float64, 8)
		for j := range fields {
			if err := binary.Read(r, binary.LittleEndian, &fields[j]); err != nil {
				return detection.Dwell{}, err
			}
		}
		d.Detections[i] = detection.Detection{
			Range: fields[0], Azimuth: fields[1], Elevation: fields[2], Strength: fields[3],
			Noise: fields[4], SNR: fields[5], RCS: fields[6], MicroDoppler: fields[7],
		}
	}

	return d, nil
}

// EncodeDwell serializes a detection dwell for test fixtures and the
// synthetic injector.
func EncodeDwell(d detection.Dwell) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, MsgDetection)
	binary.Write(buf, binary.LittleEndian, d.DwellCount)
	binary.Write(buf, binary.LittleEndian, d.TimestampUs)
	binary.Write(buf, binary.LittleEndian, uint32(len(d.Detections)))
	for _, det := range d.Detections {
		fields := []float64{det.Range, det.Azimuth, det.Elevation, det.Strength, det.Noise, det.SNR, det.RCS, det.MicroDoppler}
		for _, f := range fields {
			binary.Write(buf, binary.LittleEndian, f)
		}
	}
	return buf.Bytes()
}

// TrackUpdate is the 128-byte wire representation of one track.
type TrackUpdate struct {
	TrackID        uint32
	TimestampUs    uint64
	Status         uint32
	Classification uint32
	Range          float64
	Azimuth        float64
	Elevation      float64
	RangeRate      float64
	X, Y, Z        float64
	Vx, Vy, Vz     float64
	TrackQuality   float64
	HitCount       uint32
	MissCount      uint32
	Age            uint32
	Pad            uint32
}

// FromTrack projects a track's merged state into its wire representation.
func FromTrack(t *track.Track, nowUs uint64) TrackUpdate {
	p := t.Position()
	v := t.Velocity()
	sph := detection.CartesianToSpherical(p.X, p.Y, p.Z)

	return TrackUpdate{
		TrackID:        t.ID,
		TimestampUs:    nowUs,
		Status:         uint32(t.Status),
		Classification: uint32(t.Classification),
		Range:          sph.Range,
		Azimuth:        sph.Azimuth,
		Elevation:      sph.Elevation,
		RangeRate:      t.RangeRate(),
		X:              p.X,
		Y:              p.Y,
		Z:              p.Z,
		Vx:             v.X,
		Vy:             v.Y,
		Vz:             v.Z,
		TrackQuality:   t.Quality,
		HitCount:       t.HitCount,
		MissCount:      t.MissCount,
		Age:            t.Age,
	}
}

// EncodeTrackUpdate serializes a single-track update message: 4-byte
// message id followed by the 124-byte TrackUpdate body, 128 bytes total.
func EncodeTrackUpdate(u TrackUpdate) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, MsgTrackUpdate)
	writeTrackUpdateBody(buf, u)
	return buf.Bytes()
}

func appendTrackUpdate(buf *bytes.Buffer, u TrackUpdate) {
	binary.Write(buf, binary.LittleEndian, MsgTrackUpdate)
	writeTrackUpdateBody(buf, u)
}

func writeTrackUpdateBody(buf *bytes.Buffer, u TrackUpdate) {
	binary.Write(buf, binary.LittleEndian, u.TrackID)
	binary.Write(buf, binary.LittleEndian, u.TimestampUs)
	binary.Write(buf, binary.LittleEndian, u.Status)
	binary.Write(buf, binary.LittleEndian, u.Classification)
	for _, f := range []float64{u.Range, u.Azimuth, u.Elevation, u.RangeRate, u.X, u.Y, u.Z, u.Vx, u.Vy, u.Vz, u.TrackQuality} {
		binary.Write(buf, binary.LittleEndian, f)
	}
	binary.Write(buf, binary.LittleEndian, u.HitCount)
	binary.Write(buf, binary.LittleEndian, u.MissCount)
	binary.Write(buf, binary.LittleEndian, u.Age)
	binary.Write(buf, binary.LittleEndian, u.Pad)
}

// DecodeTrackUpdate parses a single-track update message (including its
// leading message id).
func DecodeTrackUpdate(buf []byte) (TrackUpdate, error) {
	if len(buf) < trackUpdateSize {
		return TrackUpdate{}, fmt.Errorf("wire: track update message too short: %d bytes", len(buf))
	}
	r := bytes.NewReader(buf)
	var msgID uint32
	binary.Read(r, binary.LittleEndian, &msgID)
	if msgID != MsgTrackUpdate {
		return TrackUpdate{}, fmt.Errorf("wire: unexpected message id 0x%04x", msgID)
	}
	return readTrackUpdateBody(r)
}

func readTrackUpdateBody(r *bytes.Reader) (TrackUpdate, error) {
	var u TrackUpdate
	binary.Read(r, binary.LittleEndian, &u.TrackID)
	binary.Read(r, binary.LittleEndian, &u.TimestampUs)
	binary.Read(r, binary.LittleEndian, &u.Status)
	binary.Read(r, binary.LittleEndian, &u.Classification)

	fields := make([]*float64, 11)
	fields[0], fields[1], fields[2], fields[3] = &u.Range, &u.Azimuth, &u.Elevation, &u.RangeRate
	fields[4], fields[5], fields[6] = &u.X, &u.Y, &u.Z
	fields[7], fields[8], fields[9] = &u.Vx, &u.Vy, &u.Vz
	fields[10] = &u.TrackQuality
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return TrackUpdate{}, err
		}
	}

	binary.Read(r, binary.LittleEndian, &u.HitCount)
	binary.Read(r, binary.LittleEndian, &u.MissCount)
	binary.Read(r, binary.LittleEndian, &u.Age)
	binary.Read(r, binary.LittleEndian, &u.Pad)

	return u, nil
}

// EncodeTrackTable serializes the outbound track table message: a table
// header (message id, timestamp, track count) followed by numTracks full
// 128-byte TrackUpdate records, each carrying its own MsgTrackUpdate id.
func EncodeTrackTable(nowUs uint64, updates []TrackUpdate) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, MsgTrackTable)
	binary.Write(buf, binary.LittleEndian, nowUs)
	binary.Write(buf, binary.LittleEndian, uint32(len(updates)))
	for _, u := range updates {
		appendTrackUpdate(buf, u)
	}
	return buf.Bytes()
}

// DecodeTrackTable parses an outbound track table message.
func DecodeTrackTable(buf []byte) (uint64, []TrackUpdate, error) {
	if len(buf) < 16 {
		return 0, nil, fmt.Errorf("wire: track table message too short: %d bytes", len(buf))
	}
	r := bytes.NewReader(buf)
	var msgID uint32
	binary.Read(r, binary.LittleEndian, &msgID)
	if msgID != MsgTrackTable {
		return 0, nil, fmt.Errorf("wire: unexpected message id 0x%04x", msgID)
	}
	var nowUs uint64
	binary.Read(r, binary.LittleEndian, &nowUs)
	var count uint32
	binary.Read(r, binary.LittleEndian, &count)

	expected := 16 + int(count)*trackUpdateSize
	if len(buf) < expected {
		return 0, nil, fmt.Errorf("wire: track table declares %d tracks but buffer is only %d bytes", count, len(buf))
	}

	updates := make([]TrackUpdate, count)
	for i := range updates {
		var recMsgID uint32
		if err := binary.Read(r, binary.LittleEndian, &recMsgID); err != nil {
			return 0, nil, err
		}
		if recMsgID != MsgTrackUpdate {
			return 0, nil, fmt.Errorf("wire: track table entry %d has unexpected message id 0x%04x", i, recMsgID)
		}
		u, err := readTrackUpdateBody(r)
		if err != nil {
			return 0, nil, err
		}
		updates[i] = u
	}
	return nowUs, updates, nil
}
