package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuas-radar/tracker/internal/tracker/binlog"
	"github.com/cuas-radar/tracker/internal/tracker/wire"
)

func writeTrackTableRecord(t *testing.T, buf *bytes.Buffer, timestampUs uint64, updates []wire.TrackUpdate) {
	t.Helper()
	payload := wire.EncodeTrackTable(timestampUs, updates)
	header := make([]byte, 0, 20+len(payload))
	header = appendU32(header, binlog.Magic)
	header = appendU32(header, uint32(binlog.RecordSent))
	header = appendU64(header, timestampUs)
	header = appendU32(header, uint32(len(payload)))
	header = append(header, payload...)
	buf.Write(header)
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendU64(b []byte, v uint64) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func TestCollectTrailsGroupsPointsByTrackID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writeTrackTableRecord(t, &buf, 100, []wire.TrackUpdate{{TrackID: 1, X: 0, Y: 0}, {TrackID: 2, X: 10, Y: 10}})
	writeTrackTableRecord(t, &buf, 200, []wire.TrackUpdate{{TrackID: 1, X: 1, Y: 1}, {TrackID: 2, X: 11, Y: 11}})

	trails, err := collectTrails(&buf)
	require.NoError(t, err)
	require.Len(t, trails, 2)
	require.Len(t, trails[1], 2)
	assert.Equal(t, trailPoint{X: 0, Y: 0}, trails[1][0])
	assert.Equal(t, trailPoint{X: 1, Y: 1}, trails[1][1])
}

func TestRenderProducesNonEmptyHTML(t *testing.T) {
	t.Parallel()

	trails := map[uint32][]trailPoint{
		1: {{X: 0, Y: 0}, {X: 1, Y: 1}},
	}
	var out bytes.Buffer
	require.NoError(t, render(trails, &out))
	assert.Greater(t, out.Len(), 0)
}

func TestRenderHandlesNoTracks(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, render(map[uint32][]trailPoint{}, &out))
	assert.Greater(t, out.Len(), 0)
}
